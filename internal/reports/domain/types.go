package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoDistributionList = errors.New("no distribution list configured")
	ErrDispatchFailed     = errors.New("failed to send report")
)

// Project carries the subset of project configuration the reporting pipeline reads.
type Project struct {
	ID               uuid.UUID
	OrgID            uuid.UUID
	Name             string
	DistributionList []string
	// AutoDistribute opts the project into the scheduled daily send.
	AutoDistribute bool
	CreatedAt      time.Time
}

// DailyReport is a per-date record of site work. ReportDate only carries a
// calendar date; its clock fields are zero.
type DailyReport struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	ReportDate time.Time
	Crew       string
	Activities string
	Quantities string
	Blockers   string
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}

// ActivityLines splits the newline-delimited activities, dropping blank lines.
func (r DailyReport) ActivityLines() []string {
	return splitLines(r.Activities)
}

func splitLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

type PunchStatus string

const (
	PunchOpen       PunchStatus = "open"
	PunchInProgress PunchStatus = "in_progress"
	PunchDone       PunchStatus = "done"
)

func (s PunchStatus) Valid() bool {
	switch s {
	case PunchOpen, PunchInProgress, PunchDone:
		return true
	}
	return false
}

// Label is the display form: upper case with underscores as spaces.
func (s PunchStatus) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

type PunchItem struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Title       string
	Description string
	Assignee    string
	Status      PunchStatus
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

type FieldType string

const (
	FieldText    FieldType = "text"
	FieldBoolean FieldType = "boolean"
	FieldNumber  FieldType = "number"
)

type ChecklistField struct {
	Key      string    `json:"key" yaml:"key"`
	Label    string    `json:"label" yaml:"label"`
	Type     FieldType `json:"type" yaml:"type"`
	Required bool      `json:"required" yaml:"required"`
}

type ChecklistTemplate struct {
	ID     uuid.UUID
	OrgID  uuid.UUID
	Name   string
	Fields []ChecklistField
}

// Field returns the template field with the given key.
func (t ChecklistTemplate) Field(key string) (ChecklistField, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return ChecklistField{}, false
}

type ChecklistSubmission struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	TemplateID uuid.UUID
	Values     map[string]Value
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}

// MissingRequired lists required template fields with no value in the submission.
func MissingRequired(t ChecklistTemplate, s ChecklistSubmission) []string {
	var missing []string
	for _, f := range t.Fields {
		if !f.Required {
			continue
		}
		if v, ok := s.Values[f.Key]; !ok || v.IsZero() {
			missing = append(missing, f.Key)
		}
	}
	return missing
}

type ProjectRepository interface {
	Create(ctx context.Context, p Project) error
	GetByID(ctx context.Context, id uuid.UUID) (Project, error)
	Update(ctx context.Context, p Project) error
	// ListAutoDistribute returns projects opted into the scheduled send.
	ListAutoDistribute(ctx context.Context) ([]Project, error)
}

type DailyReportRepository interface {
	Create(ctx context.Context, r DailyReport) error
	GetByID(ctx context.Context, id uuid.UUID) (DailyReport, error)
	GetByProjectDate(ctx context.Context, projectID uuid.UUID, date time.Time) (DailyReport, error)
	Update(ctx context.Context, r DailyReport) error
}

type PunchItemRepository interface {
	Create(ctx context.Context, it PunchItem) error
	// ListByProject returns items newest first.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]PunchItem, error)
	Update(ctx context.Context, it PunchItem) error
}

type ChecklistRepository interface {
	CreateTemplate(ctx context.Context, t ChecklistTemplate) error
	GetTemplate(ctx context.Context, id uuid.UUID) (ChecklistTemplate, error)
	CreateSubmission(ctx context.Context, s ChecklistSubmission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (ChecklistSubmission, error)
}

// Store bundles the repositories the reports service depends on.
type Store struct {
	Projects   ProjectRepository
	Daily      DailyReportRepository
	Punch      PunchItemRepository
	Checklists ChecklistRepository
}

// Document is a rendered export ready to be streamed to a client.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportFormat selects the punch list export encoding.
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatXLSX ExportFormat = "xlsx"
)

// SendInput carries a request to email a generated daily report.
type SendInput struct {
	ProjectID uuid.UUID
	PDFURL    string
	// ReportDate is either an ISO date (2006-01-02) or an already formatted string.
	ReportDate string
	Crew       string
}

// Service is the reporting pipeline the HTTP layer and scheduler drive.
type Service interface {
	ExportChecklist(ctx context.Context, submissionID uuid.UUID, projectName string) (Document, error)
	ExportPunchList(ctx context.Context, projectID uuid.UUID, format ExportFormat) (Document, error)
	// GenerateDailyReport renders and stores the report, returning its retrievable URL.
	GenerateDailyReport(ctx context.Context, reportID uuid.UUID, projectName string) (string, error)
	SendDailyReport(ctx context.Context, in SendInput) error
	// DistributeDaily renders and sends the project's report for date.
	DistributeDaily(ctx context.Context, projectID uuid.UUID, date time.Time) error
	CreateDailyReport(ctx context.Context, r DailyReport) (DailyReport, error)
	GetFile(ctx context.Context, key string) (Document, error)
}
