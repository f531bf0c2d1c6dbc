package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dillanmilo/railcore/internal/reports/domain"
)

// Memory keeps every reports entity in process. It is used in development
// (STORE=memory) and by tests.
type Memory struct {
	mu          sync.RWMutex
	now         func() time.Time
	projects    map[uuid.UUID]domain.Project
	daily       map[uuid.UUID]domain.DailyReport
	punch       map[uuid.UUID]domain.PunchItem
	templates   map[uuid.UUID]domain.ChecklistTemplate
	submissions map[uuid.UUID]domain.ChecklistSubmission
}

func NewMemory() *Memory {
	return &Memory{
		now:         time.Now,
		projects:    map[uuid.UUID]domain.Project{},
		daily:       map[uuid.UUID]domain.DailyReport{},
		punch:       map[uuid.UUID]domain.PunchItem{},
		templates:   map[uuid.UUID]domain.ChecklistTemplate{},
		submissions: map[uuid.UUID]domain.ChecklistSubmission{},
	}
}

func (m *Memory) Store() domain.Store {
	return domain.Store{Projects: (*memProjects)(m), Daily: (*memDaily)(m), Punch: (*memPunch)(m), Checklists: (*memChecklists)(m)}
}

func (m *Memory) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return m.now().UTC()
	}
	return t
}

type memProjects Memory

func (r *memProjects) Create(ctx context.Context, p domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.CreatedAt = (*Memory)(r).stamp(p.CreatedAt)
	p.DistributionList = append([]string(nil), p.DistributionList...)
	r.projects[p.ID] = p
	return nil
}

func (r *memProjects) GetByID(ctx context.Context, id uuid.UUID) (domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[id]
	if !ok {
		return domain.Project{}, domain.ErrNotFound
	}
	p.DistributionList = append([]string(nil), p.DistributionList...)
	return p, nil
}

func (r *memProjects) Update(ctx context.Context, p domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.projects[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = p.Name
	cur.DistributionList = append([]string(nil), p.DistributionList...)
	cur.AutoDistribute = p.AutoDistribute
	r.projects[p.ID] = cur
	return nil
}

func (r *memProjects) ListAutoDistribute(ctx context.Context) ([]domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Project
	for _, p := range r.projects {
		if p.AutoDistribute {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memDaily Memory

func (r *memDaily) Create(ctx context.Context, d domain.DailyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ReportDate = dateOnly(d.ReportDate)
	d.CreatedAt = (*Memory)(r).stamp(d.CreatedAt)
	r.daily[d.ID] = d
	return nil
}

func (r *memDaily) GetByID(ctx context.Context, id uuid.UUID) (domain.DailyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.daily[id]
	if !ok {
		return domain.DailyReport{}, domain.ErrNotFound
	}
	return d, nil
}

func (r *memDaily) GetByProjectDate(ctx context.Context, projectID uuid.UUID, date time.Time) (domain.DailyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := dateOnly(date)
	for _, d := range r.daily {
		if d.ProjectID == projectID && d.ReportDate.Equal(want) {
			return d, nil
		}
	}
	return domain.DailyReport{}, domain.ErrNotFound
}

func (r *memDaily) Update(ctx context.Context, d domain.DailyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.daily[d.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Crew, cur.Activities, cur.Quantities, cur.Blockers = d.Crew, d.Activities, d.Quantities, d.Blockers
	r.daily[d.ID] = cur
	return nil
}

type memPunch Memory

func (r *memPunch) Create(ctx context.Context, it domain.PunchItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it.CreatedAt = (*Memory)(r).stamp(it.CreatedAt)
	r.punch[it.ID] = it
	return nil
}

func (r *memPunch) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.PunchItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PunchItem
	for _, it := range r.punch {
		if it.ProjectID == projectID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *memPunch) Update(ctx context.Context, it domain.PunchItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.punch[it.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Title, cur.Description, cur.Assignee, cur.Status = it.Title, it.Description, it.Assignee, it.Status
	r.punch[it.ID] = cur
	return nil
}

type memChecklists Memory

func (r *memChecklists) CreateTemplate(ctx context.Context, t domain.ChecklistTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Fields = append([]domain.ChecklistField(nil), t.Fields...)
	r.templates[t.ID] = t
	return nil
}

func (r *memChecklists) GetTemplate(ctx context.Context, id uuid.UUID) (domain.ChecklistTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return domain.ChecklistTemplate{}, domain.ErrNotFound
	}
	t.Fields = append([]domain.ChecklistField(nil), t.Fields...)
	return t, nil
}

func (r *memChecklists) CreateSubmission(ctx context.Context, s domain.ChecklistSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.CreatedAt = (*Memory)(r).stamp(s.CreatedAt)
	s.Values = copyValues(s.Values)
	r.submissions[s.ID] = s
	return nil
}

func (r *memChecklists) GetSubmission(ctx context.Context, id uuid.UUID) (domain.ChecklistSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.submissions[id]
	if !ok {
		return domain.ChecklistSubmission{}, domain.ErrNotFound
	}
	s.Values = copyValues(s.Values)
	return s, nil
}

func copyValues(in map[string]domain.Value) map[string]domain.Value {
	out := make(map[string]domain.Value, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
