package progress

import (
	"math"
	"testing"

	"taskmgr/internal/service"
)

func ptr(f float64) *float64 { return &f }

func TestCompute_FromCounts(t *testing.T) {
	for total := 1; total <= 30; total++ {
		for completed := 0; completed <= total; completed++ {
			want := int(math.Round(float64(completed) / float64(total) * 100))
			if got := Compute(total, completed, nil); got != want {
				t.Errorf("Compute(%d, %d, nil) = %d, want %d", total, completed, got, want)
			}
		}
	}
}

func TestCompute_EmptyProject(t *testing.T) {
	if got := Compute(0, 0, nil); got != 0 {
		t.Errorf("Compute(0, 0, nil) = %d, want 0", got)
	}
}

func TestCompute_ServerPercentage(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want int
	}{
		{"in range", 42.4, 42},
		{"rounds half up", 66.5, 67},
		{"above range", 150, 100},
		{"below range", -10, 0},
		{"just above", 100.4, 100},
		{"just below", -0.4, 0},
		{"zero", 0, 0},
		{"full", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// counts must be ignored when a percentage is supplied
			if got := Compute(10, 1, ptr(tt.pct)); got != tt.want {
				t.Errorf("Compute(_, _, %v) = %d, want %d", tt.pct, got, tt.want)
			}
		})
	}
}

func TestCompute_NaNFallsBackToCounts(t *testing.T) {
	if got := Compute(4, 1, ptr(math.NaN())); got != 25 {
		t.Errorf("expected 25, got %d", got)
	}
}

func TestCompute_CompletedAboveTotalClamps(t *testing.T) {
	if got := Compute(2, 5, nil); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
}

func TestOf_IgnoresServerPercentage(t *testing.T) {
	p := service.Progress{TotalTasks: 4, CompletedTasks: 1, Percentage: ptr(90)}

	if got := Of(p, true); got != 90 {
		t.Errorf("trusted: expected 90, got %d", got)
	}
	if got := Of(p, false); got != 25 {
		t.Errorf("untrusted: expected 25, got %d", got)
	}
}

func TestFromTasks(t *testing.T) {
	tasks := []service.Task{{Completed: true}, {Completed: false}, {Completed: true}}
	p := FromTasks(tasks)
	if p.TotalTasks != 3 || p.CompletedTasks != 2 {
		t.Errorf("expected 3/2, got %d/%d", p.TotalTasks, p.CompletedTasks)
	}
	if p.Percentage != nil {
		t.Error("expected nil percentage for a locally counted snapshot")
	}
}

func TestSum(t *testing.T) {
	s := Sum([]service.Progress{
		{TotalTasks: 3, CompletedTasks: 1, Percentage: ptr(33)},
		{TotalTasks: 0, CompletedTasks: 0},
		{TotalTasks: 1, CompletedTasks: 1, Percentage: ptr(100)},
	})

	if s.Projects != 3 {
		t.Errorf("expected 3 projects, got %d", s.Projects)
	}
	if s.TotalTasks != 4 || s.CompletedTasks != 2 {
		t.Errorf("expected 4/2, got %d/%d", s.TotalTasks, s.CompletedTasks)
	}
	if s.Percentage != 50 {
		t.Errorf("expected 50, got %d", s.Percentage)
	}
}

func TestSum_Empty(t *testing.T) {
	s := Sum(nil)
	if s != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", s)
	}
}
