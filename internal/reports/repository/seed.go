package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dillanmilo/railcore/internal/reports/domain"
)

// Fixed identifiers of the demo records so local tooling can address them.
var (
	DemoOrgID        = uuid.MustParse("0b6f1d2e-5c3a-4f7e-9a10-000000000001")
	DemoProjectID    = uuid.MustParse("0b6f1d2e-5c3a-4f7e-9a10-000000000002")
	DemoTemplateID   = uuid.MustParse("0b6f1d2e-5c3a-4f7e-9a10-000000000003")
	DemoSubmissionID = uuid.MustParse("0b6f1d2e-5c3a-4f7e-9a10-000000000004")
)

// SeedResult lists what Seed created.
type SeedResult struct {
	ProjectID    uuid.UUID
	ReportIDs    []uuid.UUID
	PunchIDs     []uuid.UUID
	TemplateID   uuid.UUID
	SubmissionID uuid.UUID
}

// Seed writes a demo project with a week of daily reports ending yesterday,
// a few punch items and one checklist submission.
func Seed(ctx context.Context, st domain.Store, now time.Time, recipients []string) (SeedResult, error) {
	res := SeedResult{ProjectID: DemoProjectID, TemplateID: DemoTemplateID, SubmissionID: DemoSubmissionID}
	if err := st.Projects.Create(ctx, domain.Project{
		ID:               DemoProjectID,
		OrgID:            DemoOrgID,
		Name:             "Main Line Extension",
		DistributionList: recipients,
		AutoDistribute:   len(recipients) > 0,
	}); err != nil {
		return res, fmt.Errorf("seed project: %w", err)
	}

	crews := []string{"Track Crew A", "Track Crew B", "Signals Crew"}
	for i := 1; i <= 7; i++ {
		id := uuid.New()
		r := domain.DailyReport{
			ID:         id,
			ProjectID:  DemoProjectID,
			ReportDate: dateOnly(now.AddDate(0, 0, -i)),
			Crew:       crews[i%len(crews)],
			Activities: "Laid 200m of rail\nBallast tamping between stations 12+00 and 14+00\nInstalled 40 concrete ties",
			Quantities: "200m rail, 40 ties, 80t ballast",
		}
		if i%3 == 0 {
			r.Blockers = "Awaiting signal cable delivery"
		}
		if err := st.Daily.Create(ctx, r); err != nil {
			return res, fmt.Errorf("seed daily report: %w", err)
		}
		res.ReportIDs = append(res.ReportIDs, id)
	}

	items := []domain.PunchItem{
		{Title: "Replace cracked tie at 12+40", Description: "Tie shows a full depth crack on the field side", Assignee: "J. Alvarez", Status: domain.PunchOpen},
		{Title: "Tighten joint bars at turnout 3", Assignee: "Track Crew B", Status: domain.PunchInProgress},
		{Title: "Clear drainage ditch near MP 4.2", Description: "Standing water after rain", Status: domain.PunchDone},
	}
	for i, it := range items {
		it.ID = uuid.New()
		it.ProjectID = DemoProjectID
		it.CreatedAt = now.Add(-time.Duration(len(items)-i) * time.Hour).UTC()
		if err := st.Punch.Create(ctx, it); err != nil {
			return res, fmt.Errorf("seed punch item: %w", err)
		}
		res.PunchIDs = append(res.PunchIDs, it.ID)
	}

	tpl := domain.ChecklistTemplate{
		ID:    DemoTemplateID,
		OrgID: DemoOrgID,
		Name:  "Track Safety Inspection",
		Fields: []domain.ChecklistField{
			{Key: "ppe", Label: "PPE worn by all crew", Type: domain.FieldBoolean, Required: true},
			{Key: "flagger", Label: "Flagger on duty", Type: domain.FieldBoolean, Required: true},
			{Key: "gauge", Label: "Track gauge", Type: domain.FieldNumber},
			{Key: "notes", Label: "Notes", Type: domain.FieldText},
		},
	}
	if err := st.Checklists.CreateTemplate(ctx, tpl); err != nil {
		return res, fmt.Errorf("seed checklist template: %w", err)
	}
	if err := st.Checklists.CreateSubmission(ctx, domain.ChecklistSubmission{
		ID:         DemoSubmissionID,
		ProjectID:  DemoProjectID,
		TemplateID: DemoTemplateID,
		Values: map[string]domain.Value{
			"ppe":     domain.BoolValue(true),
			"flagger": domain.BoolValue(false),
			"gauge":   domain.NumberValue(1435),
		},
	}); err != nil {
		return res, fmt.Errorf("seed checklist submission: %w", err)
	}
	return res, nil
}
