package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	authmw "github.com/dillanmilo/railcore/internal/auth/middleware"
	"github.com/dillanmilo/railcore/internal/document"
	edomain "github.com/dillanmilo/railcore/internal/email/domain"
	emailsvc "github.com/dillanmilo/railcore/internal/email/service"
	evdomain "github.com/dillanmilo/railcore/internal/events/domain"
	"github.com/dillanmilo/railcore/internal/metrics"
	"github.com/dillanmilo/railcore/internal/reports/domain"
	sdomain "github.com/dillanmilo/railcore/internal/settings/domain"
	"github.com/dillanmilo/railcore/internal/storage"
)

// Dispatcher delivers a message and reports whether it was delivered.
type Dispatcher interface {
	Notify(ctx context.Context, orgID uuid.UUID, recipients []string, subject, html string, attachments []edomain.Attachment) bool
}

type Service struct {
	store    domain.Store
	renderer *document.Renderer
	blobs    storage.Store
	notifier Dispatcher
	settings sdomain.Service
	pub      evdomain.Publisher
	log      zerolog.Logger
	baseURL  string
	now      func() time.Time
}

var _ domain.Service = (*Service)(nil)

func New(store domain.Store, renderer *document.Renderer, blobs storage.Store, notifier Dispatcher) *Service {
	return &Service{
		store:    store,
		renderer: renderer,
		blobs:    blobs,
		notifier: notifier,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
}

// WithSettings enables per-org overrides such as the email subject prefix.
func (s *Service) WithSettings(settings sdomain.Service) *Service { s.settings = settings; return s }

func (s *Service) WithPublisher(p evdomain.Publisher) *Service { s.pub = p; return s }

func (s *Service) WithLogger(l zerolog.Logger) *Service { s.log = l; return s }

// WithBaseURL sets the public origin that stored file URLs are built on.
func (s *Service) WithBaseURL(u string) *Service { s.baseURL = strings.TrimRight(u, "/"); return s }

func (s *Service) WithClock(now func() time.Time) *Service { s.now = now; return s }

func (s *Service) ExportChecklist(ctx context.Context, submissionID uuid.UUID, projectName string) (domain.Document, error) {
	sub, err := s.store.Checklists.GetSubmission(ctx, submissionID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("load submission: %w", err)
	}
	tpl, err := s.store.Checklists.GetTemplate(ctx, sub.TemplateID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("load template: %w", err)
	}
	if err := ownedBy(ctx, tpl.OrgID); err != nil {
		return domain.Document{}, fmt.Errorf("load submission: %w", err)
	}
	if missing := domain.MissingRequired(tpl, sub); len(missing) > 0 {
		s.log.Warn().Str("submission_id", sub.ID.String()).Strs("missing", missing).Msg("checklist submission missing required values")
	}
	pdf, err := s.render("checklist", func() ([]byte, error) { return s.renderer.RenderChecklist(sub, tpl, projectName) })
	if err != nil {
		return domain.Document{}, err
	}
	doc := domain.Document{
		Filename:    fmt.Sprintf("checklist-%s-%d.pdf", Slug(tpl.Name), s.now().UnixMilli()),
		ContentType: domain.ContentTypePDF,
		Data:        pdf,
	}
	s.publish(ctx, evdomain.TypeDocumentExported, tpl.OrgID, sub.ProjectID, map[string]string{"kind": "checklist", "filename": doc.Filename})
	return doc, nil
}

func (s *Service) ExportPunchList(ctx context.Context, projectID uuid.UUID, format domain.ExportFormat) (domain.Document, error) {
	if format == "" {
		format = domain.FormatPDF
	}
	if format != domain.FormatPDF && format != domain.FormatXLSX {
		return domain.Document{}, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidInput, format)
	}
	p, err := s.store.Projects.GetByID(ctx, projectID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("load project: %w", err)
	}
	if err := ownedBy(ctx, p.OrgID); err != nil {
		return domain.Document{}, fmt.Errorf("load project: %w", err)
	}
	items, err := s.store.Punch.ListByProject(ctx, projectID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("load punch items: %w", err)
	}

	doc := domain.Document{Filename: p.Name + "-punch-list.pdf", ContentType: domain.ContentTypePDF}
	if format == domain.FormatXLSX {
		doc.Filename = p.Name + "-punch-list.xlsx"
		doc.ContentType = domain.ContentTypeXLSX
		doc.Data, err = s.render("punch_list_xlsx", func() ([]byte, error) { return s.renderer.RenderPunchListXLSX(items, p.Name) })
	} else {
		doc.Data, err = s.render("punch_list", func() ([]byte, error) { return s.renderer.RenderPunchList(items, p.Name) })
	}
	if err != nil {
		return domain.Document{}, err
	}
	s.publish(ctx, evdomain.TypeDocumentExported, p.OrgID, p.ID, map[string]string{
		"kind": "punch_list", "format": string(format), "items": strconv.Itoa(len(items)),
	})
	return doc, nil
}

func (s *Service) GenerateDailyReport(ctx context.Context, reportID uuid.UUID, projectName string) (string, error) {
	r, err := s.store.Daily.GetByID(ctx, reportID)
	if err != nil {
		return "", fmt.Errorf("load daily report: %w", err)
	}
	var org uuid.UUID
	if p, err := s.store.Projects.GetByID(ctx, r.ProjectID); err == nil {
		org = p.OrgID
	}
	if err := ownedBy(ctx, org); err != nil {
		return "", fmt.Errorf("load daily report: %w", err)
	}
	pdf, err := s.render("daily_report", func() ([]byte, error) { return s.renderer.RenderDailyReport(r, projectName) })
	if err != nil {
		return "", err
	}
	key, err := s.blobs.Put(ctx, dailyFilename(r.ReportDate), domain.ContentTypePDF, pdf)
	if err != nil {
		return "", fmt.Errorf("store daily report: %w", err)
	}
	u := s.FileURL(key)
	s.publish(ctx, evdomain.TypeReportGenerated, org, r.ProjectID, map[string]string{"report_id": r.ID.String(), "key": key})
	return u, nil
}

// FileURL is the public location of a stored blob.
func (s *Service) FileURL(key string) string {
	return s.baseURL + "/files/" + key
}

func (s *Service) GetFile(ctx context.Context, key string) (domain.Document, error) {
	b, err := s.blobs.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Document{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{Filename: b.Filename, ContentType: b.ContentType, Data: b.Data}, nil
}

func (s *Service) SendDailyReport(ctx context.Context, in domain.SendInput) error {
	p, err := s.store.Projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if err := ownedBy(ctx, p.OrgID); err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if len(p.DistributionList) == 0 {
		return domain.ErrNoDistributionList
	}
	f, err := s.GetFile(ctx, storage.KeyFromURL(in.PDFURL))
	if err != nil {
		return fmt.Errorf("load generated report: %w", err)
	}
	date := in.ReportDate
	filename := f.Filename
	if d, err := time.Parse("2006-01-02", in.ReportDate); err == nil {
		date = d.Format("January 2, 2006")
		filename = dailyFilename(d)
	}
	return s.dispatch(ctx, p, date, in.Crew, edomain.Attachment{Filename: filename, Content: f.Data, ContentType: domain.ContentTypePDF})
}

func (s *Service) DistributeDaily(ctx context.Context, projectID uuid.UUID, date time.Time) error {
	p, err := s.store.Projects.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if len(p.DistributionList) == 0 {
		return domain.ErrNoDistributionList
	}
	r, err := s.store.Daily.GetByProjectDate(ctx, projectID, date)
	if err != nil {
		return fmt.Errorf("load daily report: %w", err)
	}
	pdf, err := s.render("daily_report", func() ([]byte, error) { return s.renderer.RenderDailyReport(r, p.Name) })
	if err != nil {
		return err
	}
	att := edomain.Attachment{Filename: dailyFilename(r.ReportDate), Content: pdf, ContentType: domain.ContentTypePDF}
	return s.dispatch(ctx, p, r.ReportDate.Format("January 2, 2006"), r.Crew, att)
}

func (s *Service) dispatch(ctx context.Context, p domain.Project, date, crew string, att edomain.Attachment) error {
	var prefix string
	if s.settings != nil {
		prefix, _ = s.settings.GetString(ctx, sdomain.KeyReportSubject, &p.OrgID, "")
	}
	subject := emailsvc.DailyReportSubject(prefix, p.Name, date)
	html := emailsvc.DailyReportEmailHTML(p.Name, date, crew)
	if !s.notifier.Notify(ctx, p.OrgID, p.DistributionList, subject, html, []edomain.Attachment{att}) {
		return domain.ErrDispatchFailed
	}
	return nil
}

func (s *Service) CreateDailyReport(ctx context.Context, r domain.DailyReport) (domain.DailyReport, error) {
	if strings.TrimSpace(r.Activities) == "" {
		return domain.DailyReport{}, fmt.Errorf("%w: activities are required", domain.ErrInvalidInput)
	}
	if r.ReportDate.IsZero() {
		return domain.DailyReport{}, fmt.Errorf("%w: report date is required", domain.ErrInvalidInput)
	}
	if _, err := s.store.Projects.GetByID(ctx, r.ProjectID); err != nil {
		return domain.DailyReport{}, fmt.Errorf("load project: %w", err)
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	if err := s.store.Daily.Create(ctx, r); err != nil {
		return domain.DailyReport{}, fmt.Errorf("create daily report: %w", err)
	}
	return s.store.Daily.GetByID(ctx, r.ID)
}

func (s *Service) render(kind string, fn func() ([]byte, error)) ([]byte, error) {
	start := time.Now()
	b, err := fn()
	metrics.ObserveRender(kind, err == nil, time.Since(start).Seconds(), len(b))
	if err != nil {
		s.log.Error().Err(err).Str("kind", kind).Msg("render failed")
		return nil, fmt.Errorf("render %s: %w", kind, err)
	}
	return b, nil
}

func (s *Service) publish(ctx context.Context, typ string, orgID, projectID uuid.UUID, meta map[string]string) {
	if s.pub == nil {
		return
	}
	_ = s.pub.Publish(ctx, evdomain.Event{Type: typ, OrgID: orgID, ProjectID: projectID, Meta: meta, Time: s.now().UTC()})
}

// ownedBy hides records of other orgs from a caller scoped by the auth
// middleware. Unscoped contexts (CLI, scheduler) see everything.
func ownedBy(ctx context.Context, orgID uuid.UUID) error {
	if caller, ok := authmw.OrgFromContext(ctx); ok && caller != orgID {
		return domain.ErrNotFound
	}
	return nil
}

func dailyFilename(d time.Time) string {
	return "daily-report-" + d.Format("2006-01-02") + ".pdf"
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lower-cases s and joins its alphanumeric runs with hyphens.
func Slug(s string) string {
	out := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out == "" {
		return "checklist"
	}
	return out
}
