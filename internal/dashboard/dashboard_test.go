package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"taskmgr/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoad_NoProjects(t *testing.T) {
	svc := testutil.NewFakeService()

	stats, err := Load(context.Background(), svc, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Summary.Projects != 0 || stats.TotalTasks != 0 || stats.Percentage != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
	if svc.Calls["Progress"] != 0 {
		t.Errorf("expected no progress calls, got %d", svc.Calls["Progress"])
	}
}

func TestLoad_SumsProjects(t *testing.T) {
	svc := testutil.NewFakeService()
	home := svc.AddProject("Home")
	work := svc.AddProject("Work")
	svc.AddTask(home, "a", true, nil)
	svc.AddTask(home, "b", false, nil)
	svc.AddTask(work, "c", true, nil)
	svc.AddTask(work, "d", true, nil)

	stats, err := Load(context.Background(), svc, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Summary.Projects != 2 {
		t.Errorf("expected 2 projects, got %d", stats.Summary.Projects)
	}
	if stats.TotalTasks != 4 || stats.CompletedTasks != 3 {
		t.Errorf("expected 4/3, got %d/%d", stats.TotalTasks, stats.CompletedTasks)
	}
	if stats.Percentage != 75 {
		t.Errorf("expected 75, got %d", stats.Percentage)
	}
	if stats.Projects[0].Project.ID != home || stats.Projects[1].Project.ID != work {
		t.Error("expected rows in project order")
	}
}

func TestLoad_PartialFailureCountsAsZero(t *testing.T) {
	svc := testutil.NewFakeService()
	ok := svc.AddProject("Ok")
	bad := svc.AddProject("Bad")
	svc.AddTask(ok, "a", true, nil)
	svc.AddTask(ok, "b", false, nil)
	svc.AddTask(bad, "c", true, nil)
	svc.ProgressErr[bad] = errors.New("boom")

	stats, err := Load(context.Background(), svc, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", stats.Failed)
	}
	if stats.TotalTasks != 2 || stats.CompletedTasks != 1 || stats.Percentage != 50 {
		t.Errorf("expected failed project to contribute zero, got %+v", stats.Summary)
	}
	if stats.Projects[1].Err == nil {
		t.Error("expected error recorded on failed row")
	}
}

func TestLoad_ListFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListProjectsErr = errors.New("down")

	if _, err := Load(context.Background(), svc, discard); err == nil {
		t.Error("expected error when projects cannot be listed")
	}
}

func TestLoad_ManyProjects(t *testing.T) {
	svc := testutil.NewFakeService()
	for i := 0; i < 3*MaxConcurrent; i++ {
		id := svc.AddProject("p")
		svc.AddTask(id, "t", i%2 == 0, nil)
	}

	stats, err := Load(context.Background(), svc, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalTasks != 3*MaxConcurrent || stats.CompletedTasks != 3*MaxConcurrent/2 {
		t.Errorf("unexpected totals %+v", stats.Summary)
	}
}
