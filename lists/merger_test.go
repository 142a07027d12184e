package lists

import "testing"

func TestMergerIntersects(t *testing.T) {
	merger := NewUnmerged()

	merger.With([]uint16{1, 3, 5, 7, 64, 100}, false, false)
	merger.With([]uint16{3, 4, 5, 100}, false, false)

	for _, pos := range []int{3, 5, 100} {
		if !merger.Matches(pos) {
			t.Errorf("expected %d to survive", pos)
		}
	}

	for _, pos := range []int{1, 4, 7, 64, 101} {
		if merger.Matches(pos) {
			t.Errorf("expected %d to be dropped", pos)
		}
	}

	if merger.FullSkip() {
		t.Errorf("non empty merge must not skip")
	}
}

func TestMergerFullAndEmpty(t *testing.T) {
	merger := NewUnmerged()

	if !merger.Matches(10) {
		t.Errorf("no merges should match everything")
	}

	merger.With(nil, false, true)
	merger.With([]uint16{10}, false, false)

	if !merger.Matches(10) || merger.Matches(11) {
		t.Errorf("full merge should keep only listed positions")
	}

	merger.With(nil, true, false)

	if merger.Matches(10) {
		t.Errorf("empty merge should drop everything")
	}

	if !merger.FullSkip() {
		t.Errorf("empty merge should mark the rest as skippable")
	}

	merger.Reset()

	if merger.FullSkip() || !merger.Matches(10) {
		t.Errorf("reset should clear merges")
	}
}

func TestMergerEmptyListSkips(t *testing.T) {
	merger := NewUnmerged()

	merger.With([]uint16{}, false, false)

	if !merger.FullSkip() || merger.Matches(0) {
		t.Errorf("a condition keeping nothing should skip the rest")
	}
}
