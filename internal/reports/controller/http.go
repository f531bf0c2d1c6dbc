package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	authmw "github.com/dillanmilo/railcore/internal/auth/middleware"
	"github.com/dillanmilo/railcore/internal/platform/ratelimit"
	"github.com/dillanmilo/railcore/internal/platform/validation"
	"github.com/dillanmilo/railcore/internal/reports/domain"
	sdomain "github.com/dillanmilo/railcore/internal/settings/domain"
)

type Controller struct {
	svc      domain.Service
	log      zerolog.Logger
	auth     echo.MiddlewareFunc
	rlStore  ratelimit.Store
	settings sdomain.Service
	limit    int
	window   time.Duration
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc, log: zerolog.Nop(), limit: 30, window: time.Minute}
}

func (h *Controller) WithLogger(l zerolog.Logger) *Controller { h.log = l; return h }

// WithAuth protects the export and dispatch routes.
func (h *Controller) WithAuth(mw echo.MiddlewareFunc) *Controller { h.auth = mw; return h }

// WithRateLimit limits export and dispatch routes per org or IP. A nil store
// keeps counters in process.
func (h *Controller) WithRateLimit(store ratelimit.Store, limit int, window time.Duration) *Controller {
	h.rlStore, h.limit, h.window = store, limit, window
	return h
}

// WithSettings allows rate limits to be tuned per org at runtime.
func (h *Controller) WithSettings(s sdomain.Service) *Controller { h.settings = s; return h }

// Register mounts the routes under /api/v1 and at the root.
func (h *Controller) Register(e *echo.Echo) {
	if h.rlStore == nil {
		h.rlStore = ratelimit.NewMemoryStore()
	}
	h.RegisterV1(e.Group("/api/v1"))
	h.RegisterV1(e.Group(""))
}

func (h *Controller) RegisterV1(g *echo.Group) {
	g.POST("/checklists/export", h.exportChecklist, h.guard("export:checklist")...)
	g.POST("/punch/export", h.exportPunchList, h.guard("export:punch")...)
	g.POST("/reports/generate", h.generateReport, h.guard("reports:generate")...)
	g.POST("/reports/send", h.sendReport, h.guard("reports:send")...)
	g.GET("/files/:key", h.getFile)
}

func (h *Controller) guard(name string) []echo.MiddlewareFunc {
	var mws []echo.MiddlewareFunc
	if h.auth != nil {
		mws = append(mws, h.auth)
	}
	p := ratelimit.Policy{Name: name, Limit: h.limit, Window: h.window, Key: ratelimit.KeyOrgOrIP(name)}
	if h.settings != nil {
		p.LimitFunc = func(c echo.Context) int {
			n, _ := h.settings.GetInt(c.Request().Context(), sdomain.KeyRLExportLimit, orgOf(c), h.limit)
			return n
		}
		p.WindowFunc = func(c echo.Context) time.Duration {
			d, _ := h.settings.GetDuration(c.Request().Context(), sdomain.KeyRLExportWindow, orgOf(c), h.window)
			return d
		}
	}
	if h.rlStore != nil {
		return append(mws, ratelimit.MiddlewareWithStore(p, h.rlStore))
	}
	return append(mws, ratelimit.Middleware(p))
}

type exportChecklistReq struct {
	SubmissionID string `json:"submissionId" validate:"required"`
	ProjectName  string `json:"projectName" validate:"required"`
}

type exportPunchReq struct {
	ProjectID string `json:"projectId" validate:"required"`
	Format    string `json:"format,omitempty" validate:"omitempty,oneof=pdf xlsx"`
}

type generateReq struct {
	ReportID    string `json:"reportId" validate:"required"`
	ProjectName string `json:"projectName" validate:"required"`
}

type generateResp struct {
	PDFURL string `json:"pdfUrl"`
}

type sendReq struct {
	ProjectID  string `json:"projectId" validate:"required"`
	PDFURL     string `json:"pdfUrl" validate:"required"`
	ReportDate string `json:"reportDate" validate:"required"`
	Crew       string `json:"crew"`
}

type sendResp struct {
	Success bool `json:"success"`
}

// Export checklist godoc
// @Summary      Export checklist submission as PDF
// @Tags         reports
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  exportChecklistReq  true  "submission and project name"
// @Success      200
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/checklists/export [post]
func (h *Controller) exportChecklist(c echo.Context) error {
	var req exportChecklistReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	id, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid submissionId"})
	}
	doc, err := h.svc.ExportChecklist(c.Request().Context(), id, req.ProjectName)
	if err != nil {
		return h.fail(c, err)
	}
	return attachment(c, doc)
}

// Export punch list godoc
// @Summary      Export a project's punch list as PDF or XLSX
// @Tags         reports
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  exportPunchReq  true  "project and optional format"
// @Success      200
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/punch/export [post]
func (h *Controller) exportPunchList(c echo.Context) error {
	var req exportPunchReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	id, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid projectId"})
	}
	doc, err := h.svc.ExportPunchList(c.Request().Context(), id, domain.ExportFormat(req.Format))
	if err != nil {
		return h.fail(c, err)
	}
	return attachment(c, doc)
}

// Generate report godoc
// @Summary      Render a daily report and store it
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        body  body  generateReq  true  "report and project name"
// @Success      200   {object}  generateResp
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/reports/generate [post]
func (h *Controller) generateReport(c echo.Context) error {
	var req generateReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	id, err := uuid.Parse(req.ReportID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid reportId"})
	}
	u, err := h.svc.GenerateDailyReport(c.Request().Context(), id, req.ProjectName)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, generateResp{PDFURL: u})
}

// Send report godoc
// @Summary      Email a generated daily report to the project's distribution list
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        body  body  sendReq  true  "project, document URL, date and crew"
// @Success      200   {object}  sendResp
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/reports/send [post]
func (h *Controller) sendReport(c echo.Context) error {
	var req sendReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	id, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid projectId"})
	}
	err = h.svc.SendDailyReport(c.Request().Context(), domain.SendInput{
		ProjectID:  id,
		PDFURL:     req.PDFURL,
		ReportDate: req.ReportDate,
		Crew:       req.Crew,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sendResp{Success: true})
}

// Get file godoc
// @Summary      Download a stored document
// @Tags         reports
// @Produce      application/pdf
// @Param        key  path  string  true  "File key"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/files/{key} [get]
func (h *Controller) getFile(c echo.Context) error {
	doc, err := h.svc.GetFile(c.Request().Context(), c.Param("key"))
	if err != nil {
		return h.fail(c, err)
	}
	return send(c, "inline", doc)
}

// bindAndValidate reports false after writing a 400 response.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	return true, nil
}

// fail maps service errors onto the response contract.
func (h *Controller) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNoDistributionList):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": domain.ErrNoDistributionList.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrDispatchFailed):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": domain.ErrDispatchFailed.Error()})
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func attachment(c echo.Context, doc domain.Document) error { return send(c, "attachment", doc) }

func send(c echo.Context, disposition string, doc domain.Document) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition+`; filename="`+safeFilename(doc.Filename)+`"`)
	return c.Blob(http.StatusOK, doc.ContentType, doc.Data)
}

var filenameReplacer = strings.NewReplacer(`"`, "'", "\r", "", "\n", "", `\`, "_")

func safeFilename(name string) string { return filenameReplacer.Replace(name) }

func orgOf(c echo.Context) *uuid.UUID {
	if id, ok := authmw.OrgID(c); ok {
		return &id
	}
	return nil
}
