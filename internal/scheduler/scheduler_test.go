package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillanmilo/railcore/internal/reports/domain"
	"github.com/dillanmilo/railcore/internal/reports/repository"
)

type call struct {
	project uuid.UUID
	date    time.Time
}

type fakeDistributor struct {
	calls []call
	errs  map[uuid.UUID]error
}

func (f *fakeDistributor) DistributeDaily(ctx context.Context, projectID uuid.UUID, date time.Time) error {
	f.calls = append(f.calls, call{projectID, date})
	return f.errs[projectID]
}

func TestYesterday_UsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 02:00 UTC on March 16 is still March 15 in New York.
	now := time.Date(2024, 3, 16, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Yesterday(now, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), Yesterday(now, ny))
}

func TestRun_SendsYesterdayForAutoProjects(t *testing.T) {
	ctx := context.Background()
	st := repository.NewMemory().Store()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, st.Projects.Create(ctx, domain.Project{ID: a, Name: "A", AutoDistribute: true}))
	require.NoError(t, st.Projects.Create(ctx, domain.Project{ID: b, Name: "B", AutoDistribute: true}))
	require.NoError(t, st.Projects.Create(ctx, domain.Project{ID: c, Name: "C"}))

	dist := &fakeDistributor{errs: map[uuid.UUID]error{b: domain.ErrNotFound}}
	s := New(st.Projects, dist, time.UTC, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 3, 16, 6, 0, 0, 0, time.UTC) }

	res := s.Run(ctx)
	assert.Equal(t, Result{Sent: 1, Skipped: 1}, res)
	require.Len(t, dist.calls, 2)
	assert.Equal(t, a, dist.calls[0].project)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), dist.calls[0].date)
}

func TestRun_CountsFailures(t *testing.T) {
	ctx := context.Background()
	st := repository.NewMemory().Store()
	id := uuid.New()
	require.NoError(t, st.Projects.Create(ctx, domain.Project{ID: id, Name: "A", AutoDistribute: true}))
	dist := &fakeDistributor{errs: map[uuid.UUID]error{id: errors.New("smtp down")}}

	res := New(st.Projects, dist, nil, zerolog.Nop()).Run(ctx)
	assert.Equal(t, Result{Failed: 1}, res)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := New(repository.NewMemory().Store().Projects, &fakeDistributor{}, time.UTC, zerolog.Nop())
	assert.Error(t, s.Start("not a spec"))
	assert.True(t, s.Next().IsZero())
}

func TestStart_SchedulesNextRun(t *testing.T) {
	s := New(repository.NewMemory().Store().Projects, &fakeDistributor{}, time.UTC, zerolog.Nop())
	require.NoError(t, s.Start("0 6 * * *"))
	defer s.Stop(context.Background())
	next := s.Next()
	require.False(t, next.IsZero())
	assert.Equal(t, 6, next.UTC().Hour())
	assert.Equal(t, 0, next.Minute())
}
