package progress

import (
	"testing"

	"pgregory.net/rapid"
)

// TestTracker_Property_NeverTwoInProgress drives the tracker with arbitrary
// operation sequences and checks the state invariants after each step.
func TestTracker_Property_NeverTwoInProgress(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "tasks")
		tr := NewTracker()
		labels := make([]string, n)
		for i := range labels {
			labels[i] = rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "label")
		}
		tr.Seed(labels...)

		prev := tr.Snapshot()
		ops := rapid.IntRange(0, 40).Draw(t, "ops")
		for range ops {
			idx := rapid.IntRange(-1, n).Draw(t, "idx")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				_ = tr.MarkInProgress(idx)
			case 1:
				_ = tr.MarkCompleted(idx)
			case 2:
				_ = tr.MarkFailed(idx)
			}

			snap := tr.Snapshot()
			if len(snap) != n {
				t.Fatalf("task count changed: %d -> %d", n, len(snap))
			}
			if c := Count(snap); c.InProgress > 1 {
				t.Fatalf("%d tasks in progress: %v", c.InProgress, snap)
			}
			for i := range snap {
				if prev[i].Status.IsTerminal() && snap[i].Status != prev[i].Status {
					t.Fatalf("task %d left terminal state %s for %s", i, prev[i].Status, snap[i].Status)
				}
				if snap[i].Label != labels[i] {
					t.Fatalf("task %d label changed", i)
				}
			}
			prev = snap
		}
	})
}
