package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dillanmilo/railcore/internal/reports/domain"
)

// PG implements every reports repository against Postgres.
type PG struct{ pg *pgxpool.Pool }

func NewPG(pg *pgxpool.Pool) *PG { return &PG{pg: pg} }

// Store exposes the pool-backed repositories as a domain.Store.
func (r *PG) Store() domain.Store {
	return domain.Store{Projects: (*pgProjects)(r), Daily: (*pgDaily)(r), Punch: (*pgPunch)(r), Checklists: (*pgChecklists)(r)}
}

func toPgUUID(u uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: u, Valid: true}
}

func fromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type pgProjects PG

const (
	insertProject = `
INSERT INTO projects (id, org_id, name, distribution_list, auto_distribute)
VALUES ($1, $2, $3, $4, $5)`
	selectProject = `
SELECT id, org_id, name, distribution_list, auto_distribute, created_at
FROM projects`
	updateProject = `
UPDATE projects SET name = $2, distribution_list = $3, auto_distribute = $4
WHERE id = $1`
)

func scanProject(row pgx.Row) (domain.Project, error) {
	var (
		p         domain.Project
		id, orgID pgtype.UUID
	)
	if err := row.Scan(&id, &orgID, &p.Name, &p.DistributionList, &p.AutoDistribute, &p.CreatedAt); err != nil {
		return domain.Project{}, err
	}
	p.ID, p.OrgID = fromPgUUID(id), fromPgUUID(orgID)
	return p, nil
}

func (r *pgProjects) Create(ctx context.Context, p domain.Project) error {
	if p.DistributionList == nil {
		p.DistributionList = []string{}
	}
	_, err := r.pg.Exec(ctx, insertProject, toPgUUID(p.ID), toPgUUID(p.OrgID), p.Name, p.DistributionList, p.AutoDistribute)
	return err
}

func (r *pgProjects) GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error) {
	p, err := scanProject(r.pg.QueryRow(ctx, selectProject+" WHERE id = $1", toPgUUID(id)))
	return p, notFound(err)
}

func (r *pgProjects) Update(ctx context.Context, p domain.Project) error {
	if p.DistributionList == nil {
		p.DistributionList = []string{}
	}
	tag, err := r.pg.Exec(ctx, updateProject, toPgUUID(p.ID), p.Name, p.DistributionList, p.AutoDistribute)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgProjects) ListAutoDistribute(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.pg.Query(ctx, selectProject+" WHERE auto_distribute ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type pgDaily PG

const (
	insertDaily = `
INSERT INTO daily_reports (id, project_id, report_date, crew, activities, quantities, blockers, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	selectDaily = `
SELECT id, project_id, report_date, crew, activities, quantities, blockers, created_by, created_at
FROM daily_reports`
	updateDaily = `
UPDATE daily_reports SET crew = $2, activities = $3, quantities = $4, blockers = $5
WHERE id = $1`
)

func scanDaily(row pgx.Row) (domain.DailyReport, error) {
	var (
		d                  domain.DailyReport
		id, pid, createdBy pgtype.UUID
		date               pgtype.Date
	)
	if err := row.Scan(&id, &pid, &date, &d.Crew, &d.Activities, &d.Quantities, &d.Blockers, &createdBy, &d.CreatedAt); err != nil {
		return domain.DailyReport{}, err
	}
	d.ID, d.ProjectID, d.CreatedBy = fromPgUUID(id), fromPgUUID(pid), fromPgUUID(createdBy)
	d.ReportDate = dateOnly(date.Time)
	return d, nil
}

func (r *pgDaily) Create(ctx context.Context, d domain.DailyReport) error {
	_, err := r.pg.Exec(ctx, insertDaily,
		toPgUUID(d.ID), toPgUUID(d.ProjectID),
		pgtype.Date{Time: dateOnly(d.ReportDate), Valid: true},
		d.Crew, d.Activities, d.Quantities, d.Blockers, toPgUUID(d.CreatedBy))
	return err
}

func (r *pgDaily) GetByID(ctx context.Context, id uuid.UUID) (domain.DailyReport, error) {
	d, err := scanDaily(r.pg.QueryRow(ctx, selectDaily+" WHERE id = $1", toPgUUID(id)))
	return d, notFound(err)
}

func (r *pgDaily) GetByProjectDate(ctx context.Context, projectID uuid.UUID, date time.Time) (domain.DailyReport, error) {
	d, err := scanDaily(r.pg.QueryRow(ctx, selectDaily+" WHERE project_id = $1 AND report_date = $2",
		toPgUUID(projectID), pgtype.Date{Time: dateOnly(date), Valid: true}))
	return d, notFound(err)
}

func (r *pgDaily) Update(ctx context.Context, d domain.DailyReport) error {
	tag, err := r.pg.Exec(ctx, updateDaily, toPgUUID(d.ID), d.Crew, d.Activities, d.Quantities, d.Blockers)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type pgPunch PG

const (
	insertPunch = `
INSERT INTO punch_items (id, project_id, title, description, assignee, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	listPunch = `
SELECT id, project_id, title, description, assignee, status, created_by, created_at
FROM punch_items WHERE project_id = $1
ORDER BY created_at DESC, id`
	updatePunch = `
UPDATE punch_items SET title = $2, description = $3, assignee = $4, status = $5
WHERE id = $1`
)

func (r *pgPunch) Create(ctx context.Context, it domain.PunchItem) error {
	_, err := r.pg.Exec(ctx, insertPunch, toPgUUID(it.ID), toPgUUID(it.ProjectID),
		it.Title, it.Description, it.Assignee, string(it.Status), toPgUUID(it.CreatedBy))
	return err
}

func (r *pgPunch) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.PunchItem, error) {
	rows, err := r.pg.Query(ctx, listPunch, toPgUUID(projectID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.PunchItem
	for rows.Next() {
		var (
			it                 domain.PunchItem
			id, pid, createdBy pgtype.UUID
			status             string
		)
		if err := rows.Scan(&id, &pid, &it.Title, &it.Description, &it.Assignee, &status, &createdBy, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.ID, it.ProjectID, it.CreatedBy = fromPgUUID(id), fromPgUUID(pid), fromPgUUID(createdBy)
		it.Status = domain.PunchStatus(status)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *pgPunch) Update(ctx context.Context, it domain.PunchItem) error {
	tag, err := r.pg.Exec(ctx, updatePunch, toPgUUID(it.ID), it.Title, it.Description, it.Assignee, string(it.Status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type pgChecklists PG

const (
	insertTemplate   = `INSERT INTO checklist_templates (id, org_id, name, fields) VALUES ($1, $2, $3, $4)`
	selectTemplate   = `SELECT id, org_id, name, fields FROM checklist_templates WHERE id = $1`
	insertSubmission = `
INSERT INTO checklist_submissions (id, project_id, template_id, field_values, created_by)
VALUES ($1, $2, $3, $4, $5)`
	selectSubmission = `
SELECT id, project_id, template_id, field_values, created_by, created_at
FROM checklist_submissions WHERE id = $1`
)

func (r *pgChecklists) CreateTemplate(ctx context.Context, t domain.ChecklistTemplate) error {
	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return fmt.Errorf("encode template fields: %w", err)
	}
	_, err = r.pg.Exec(ctx, insertTemplate, toPgUUID(t.ID), toPgUUID(t.OrgID), t.Name, fields)
	return err
}

func (r *pgChecklists) GetTemplate(ctx context.Context, id uuid.UUID) (domain.ChecklistTemplate, error) {
	var (
		t        domain.ChecklistTemplate
		tid, org pgtype.UUID
		fields   []byte
	)
	if err := r.pg.QueryRow(ctx, selectTemplate, toPgUUID(id)).Scan(&tid, &org, &t.Name, &fields); err != nil {
		return domain.ChecklistTemplate{}, notFound(err)
	}
	if err := json.Unmarshal(fields, &t.Fields); err != nil {
		return domain.ChecklistTemplate{}, fmt.Errorf("decode template fields: %w", err)
	}
	t.ID, t.OrgID = fromPgUUID(tid), fromPgUUID(org)
	return t, nil
}

func (r *pgChecklists) CreateSubmission(ctx context.Context, s domain.ChecklistSubmission) error {
	values := s.Values
	if values == nil {
		values = map[string]domain.Value{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode submission values: %w", err)
	}
	_, err = r.pg.Exec(ctx, insertSubmission, toPgUUID(s.ID), toPgUUID(s.ProjectID), toPgUUID(s.TemplateID), raw, toPgUUID(s.CreatedBy))
	return err
}

func (r *pgChecklists) GetSubmission(ctx context.Context, id uuid.UUID) (domain.ChecklistSubmission, error) {
	var (
		s                      domain.ChecklistSubmission
		sid, pid, tid, creator pgtype.UUID
		raw                    []byte
	)
	if err := r.pg.QueryRow(ctx, selectSubmission, toPgUUID(id)).Scan(&sid, &pid, &tid, &raw, &creator, &s.CreatedAt); err != nil {
		return domain.ChecklistSubmission{}, notFound(err)
	}
	if err := json.Unmarshal(raw, &s.Values); err != nil {
		return domain.ChecklistSubmission{}, fmt.Errorf("decode submission values: %w", err)
	}
	s.ID, s.ProjectID, s.TemplateID, s.CreatedBy = fromPgUUID(sid), fromPgUUID(pid), fromPgUUID(tid), fromPgUUID(creator)
	return s, nil
}
