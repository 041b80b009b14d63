package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/habitask/pkg/model"
	"github.com/harrisonrobin/habitask/pkg/overdue"
)

type checkIn struct {
	routine string
	day     string
	streak  int
}

type fakePublisher struct {
	synced    map[string]string
	removed   []string
	checkIns  []checkIn
	unchecked []string
	marked    []string
	failOn    string
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{synced: make(map[string]string)}
}

func (p *fakePublisher) SyncTask(ctx context.Context, task model.Task, today model.Date) (string, error) {
	if task.ID == p.failOn {
		return "", errors.New("boom")
	}
	p.synced[task.ID] = "evt-" + task.ID
	return "evt-" + task.ID, nil
}

func (p *fakePublisher) RemoveTask(ctx context.Context, taskID string) error {
	p.removed = append(p.removed, taskID)
	return nil
}

func (p *fakePublisher) SyncCheckIn(ctx context.Context, r model.Routine, day model.Date, streak int) error {
	p.checkIns = append(p.checkIns, checkIn{routine: r.ID, day: day.String(), streak: streak})
	return nil
}

func (p *fakePublisher) RemoveCheckIn(ctx context.Context, routineID string, day model.Date) error {
	p.unchecked = append(p.unchecked, routineID+"@"+day.String())
	return nil
}

func (p *fakePublisher) MarkOverdue(ctx context.Context, eventID, summary string) error {
	if eventID == p.failOn {
		return errors.New("boom")
	}
	p.marked = append(p.marked, eventID+" "+summary)
	return nil
}

func newTestTable(t *testing.T) *overdue.Table {
	t.Helper()
	table, err := overdue.NewTable(filepath.Join(t.TempDir(), "pending_tasks.json"))
	require.NoError(t, err)
	return table
}

func TestPublish(t *testing.T) {
	svc, st := newTestService(t, "2024-03-10")
	ctx := context.Background()
	due := model.MustParseDate("2024-03-12")
	require.NoError(t, st.ReplaceTasks(ctx, []model.Task{
		{ID: "open", Name: "Report", Importance: 80, Urgency: 80, DueDate: &due},
		{ID: "done", Name: "Old", Completed: true, DueDate: &due},
		{ID: "undated", Name: "Someday"},
	}))
	require.NoError(t, st.ReplaceRoutines(ctx, []model.Routine{{
		ID: "r1", Name: "Run", TargetDays: 30,
		CompletedDates: []model.Date{
			model.MustParseDate("2024-03-01"),
			model.MustParseDate("2024-03-09"),
			model.MustParseDate("2024-03-10"),
		},
	}}))

	pub := newFakePublisher()
	table := newTestTable(t)
	report, err := svc.Publish(ctx, pub, table, 3)
	require.NoError(t, err)

	assert.Equal(t, PublishReport{Tasks: 1, Removed: 2, CheckIns: 2}, report)
	assert.Equal(t, map[string]string{"open": "evt-open"}, pub.synced)
	assert.ElementsMatch(t, []string{"done", "undated"}, pub.removed)
	assert.Equal(t, []checkIn{
		{routine: "r1", day: "2024-03-09", streak: 1},
		{routine: "r1", day: "2024-03-10", streak: 2},
	}, pub.checkIns)
	assert.Equal(t, []string{"r1@2024-03-08"}, pub.unchecked)

	entry, ok := table.Entries["open"]
	require.True(t, ok)
	assert.Equal(t, "evt-open", entry.EventID)
	assert.Equal(t, "[Q1] Report", entry.Summary)
}

func TestPublishContinuesPastFailures(t *testing.T) {
	svc, st := newTestService(t, "2024-03-10")
	ctx := context.Background()
	due := model.MustParseDate("2024-03-12")
	require.NoError(t, st.ReplaceTasks(ctx, []model.Task{
		{ID: "bad", Name: "Broken", DueDate: &due},
		{ID: "good", Name: "Fine", DueDate: &due},
	}))

	pub := newFakePublisher()
	pub.failOn = "bad"
	report, err := svc.Publish(ctx, pub, nil, 1)
	assert.Error(t, err)
	assert.Equal(t, 1, report.Tasks)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, pub.synced, "good")
}

func TestSweepOverdue(t *testing.T) {
	svc, _ := newTestService(t, "2024-03-10")
	ctx := context.Background()
	table := newTestTable(t)
	earlier := model.MustParseDate("2024-03-05")
	table.Update("a", "evt-a", "[Q1] A", model.MustParseDate("2024-03-09"), earlier)
	table.Update("b", "evt-b", "[Q2] B", model.MustParseDate("2024-03-09"), earlier)
	table.Update("c", "evt-c", "[Q3] C", model.MustParseDate("2024-03-20"), earlier)

	pub := newFakePublisher()
	pub.failOn = "evt-b"
	marked, err := svc.SweepOverdue(ctx, pub, table)
	assert.Error(t, err)
	assert.Equal(t, 1, marked)
	assert.Equal(t, []string{"evt-a [Q1] A"}, pub.marked)

	assert.NotContains(t, table.Entries, "a")
	assert.Contains(t, table.Entries, "b")
	assert.Contains(t, table.Entries, "c")
}
