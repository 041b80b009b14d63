package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/habitask/pkg/config"
	"github.com/harrisonrobin/habitask/pkg/matrix"
	"github.com/harrisonrobin/habitask/pkg/model"
	"github.com/harrisonrobin/habitask/pkg/progress"
	"github.com/harrisonrobin/habitask/pkg/tracker"
)

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.DirEnv, dir)
	for _, key := range []string{"HABITASK_STORE", "HABITASK_REDIS_URL", "HABITASK_CALENDAR", "HABITASK_TIMEZONE", "HABITASK_CHECKIN_WINDOW_DAYS"} {
		t.Setenv(key, "")
	}
	t.Setenv("HABITASK_TIMEZONE", "UTC")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{clock: tracker.FixedDay(model.MustParseDate("2024-03-10"))}
	root := a.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func addTask(t *testing.T, args ...string) model.Task {
	t.Helper()
	out := mustRun(t, append([]string{"task", "add", "--json"}, args...)...)
	var task model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	return task
}

func TestTaskLifecycle(t *testing.T) {
	setup(t)

	urgent := addTask(t, "Fix outage", "-i", "90", "-u", "95", "--due", "2024-03-11", "-t", "ops")
	assert.Equal(t, "Fix outage", urgent.Name)
	assert.Equal(t, []string{"ops"}, urgent.Tags)
	require.NotNil(t, urgent.DueDate)
	assert.Equal(t, "2024-03-11", urgent.DueDate.String())

	later := addTask(t, "Plan roadmap", "-i", "80", "-u", "10")

	out := mustRun(t, "matrix", "--json")
	var buckets map[string][]model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &buckets))
	require.Len(t, buckets["urgent-important"], 1)
	require.Len(t, buckets["not-urgent-important"], 1)
	assert.Empty(t, buckets["urgent-not-important"])

	out = mustRun(t, "reassign", later.ID, "q1")
	assert.Contains(t, out, "Urgent & Important")

	out = mustRun(t, "matrix")
	assert.Contains(t, out, "Fix outage")
	assert.Contains(t, out, "Plan roadmap")

	mustRun(t, "task", "done", urgent.ID)
	out = mustRun(t, "task", "list", "--sort", "name-asc", "--json")
	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "Fix outage", tasks[0].Name)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, 75, tasks[1].Importance)
	assert.Equal(t, 75, tasks[1].Urgency)
}

func TestTaskErrors(t *testing.T) {
	setup(t)

	_, err := run(t, "task", "done", "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = run(t, "task", "add", "x", "--due", "2024-02-30")
	assert.ErrorIs(t, err, model.ErrInvalidDate)

	_, err = run(t, "reassign", "any", "q9")
	assert.Error(t, err)

	_, err = run(t, "task", "list", "--sort", "priority")
	assert.Error(t, err)
}

func TestRoutineCommands(t *testing.T) {
	setup(t)

	out := mustRun(t, "routine", "add", "Run", "-c", "fitness", "--target", "4", "--json")
	var r model.Routine
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 4, r.TargetDays)

	mustRun(t, "routine", "toggle", r.ID, "--date", "2024-03-09")
	out = mustRun(t, "routine", "toggle", r.ID)
	assert.Contains(t, out, "done on 2024-03-10, streak 2")

	out = mustRun(t, "stats", "--json")
	var stats progress.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.TotalCompletions)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.InDelta(t, 50.0, stats.AverageCompletionRate, 1e-9)
	assert.Equal(t, 1, stats.PerCategory["fitness"].Count)

	out = mustRun(t, "today", "--json")
	var overview progress.Overview
	require.NoError(t, json.Unmarshal([]byte(out), &overview))
	assert.Equal(t, 1, overview.Active)
	assert.Equal(t, 1, overview.CompletedToday)

	out = mustRun(t, "stats")
	assert.Contains(t, out, "Run")
	assert.Contains(t, out, "fitness")

	_, err := run(t, "routine", "add", "Bad", "--target=-2")
	assert.ErrorIs(t, err, model.ErrInvalidTarget)
}

func TestConfigCommands(t *testing.T) {
	setup(t)

	mustRun(t, "config", "set-calendar", "Personal")
	mustRun(t, "config", "set-sort", "q2", "name")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "Personal", cfg.Calendar)
	assert.Equal(t, matrix.SortOption{Key: matrix.ByName, Direction: matrix.Asc}, cfg.Sort[matrix.NotUrgentImportant])

	out := mustRun(t, "config", "show", "--json")
	assert.Contains(t, out, `"calendar": "Personal"`)

	_, err = run(t, "config", "set-sort", "q2", "bogus")
	assert.Error(t, err)
}

func TestImportCommands(t *testing.T) {
	dir := setup(t)

	export := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(export, []byte(`[
		{"uuid":"tw-1","description":"Pay rent","status":"pending","priority":"H","urgency":9.1,"due":"20240312T120000Z"},
		{"uuid":"tw-2","description":"Old chore","status":"deleted"}
	]`), 0600))
	out := mustRun(t, "import", "taskwarrior", "--file", export)
	assert.Contains(t, out, "Imported 1 new and 0 updated tasks")
	out = mustRun(t, "import", "taskwarrior", "--file", export)
	assert.Contains(t, out, "Imported 0 new and 1 updated tasks")

	org := filepath.Join(dir, "todo.org")
	require.NoError(t, os.WriteFile(org, []byte("* TODO [#C] Water plants :home:\n* TODO Email Bob :work:\n"), 0600))
	out = mustRun(t, "import", "org", org, "--tag", "home")
	assert.Contains(t, out, "Imported 1 new")

	out = mustRun(t, "task", "list", "--json")
	var tasks []model.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 2)
	names := []string{tasks[0].Name, tasks[1].Name}
	assert.ElementsMatch(t, []string{"Pay rent", "Water plants"}, names)
	for _, task := range tasks {
		if task.ID == "tw-1" {
			assert.Equal(t, 75, task.Importance)
			assert.Equal(t, 91, task.Urgency)
		}
	}
}

func TestImportTaskwarriorFromStdin(t *testing.T) {
	setup(t)
	a := &app{clock: tracker.FixedDay(model.MustParseDate("2024-03-10"))}
	root := a.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(`{"uuid":"s1","description":"From hook","status":"pending"}`))
	root.SetArgs([]string{"import", "taskwarrior", "--file", "-"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Imported 1 new")
}

func TestSweepWithEmptyTable(t *testing.T) {
	setup(t)
	out := mustRun(t, "sweep")
	assert.Contains(t, out, "Nothing to sweep")
}
