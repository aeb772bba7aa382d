package grid

import "testing"

func TestRectValid(t *testing.T) {
	tests := []struct {
		r    Rect
		want bool
	}{
		{NewRect(0, 0, 1, 1), true},
		{NewRect(5, 5, 10, 3), true},
		{NewRect(0, 0, 0, 4), false},
		{NewRect(0, 0, 4, 0), false},
		{NewRect(0, 0, -3, 4), false},
	}

	for _, tc := range tests {
		if got := tc.r.Valid(); got != tc.want {
			t.Errorf("%v.Valid() = %v, want %v", tc.r, got, tc.want)
		}
	}
}

func TestRectCenter(t *testing.T) {
	tests := []struct {
		r    Rect
		want Pos
	}{
		{NewRect(0, 0, 10, 10), Pos{5, 5}},
		{NewRect(3, 4, 5, 7), Pos{5, 7}},
		{NewRect(-4, -4, 1, 1), Pos{-4, -4}},
	}

	for _, tc := range tests {
		if got := tc.r.Center(); got != tc.want {
			t.Errorf("%v.Center() = %v, want %v", tc.r, got, tc.want)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(2, 2, 3, 3)
	if !r.Contains(Pos{2, 2}) {
		t.Error("Contains(2,2) = false, want true")
	}
	if !r.Contains(Pos{4, 4}) {
		t.Error("Contains(4,4) = false, want true")
	}
	if r.Contains(Pos{5, 4}) {
		t.Error("Contains(5,4) = true, want false")
	}
}

func TestFloorSetIdempotentAdd(t *testing.T) {
	f := NewFloorSet()
	f.Add(Pos{1, 1})
	f.Add(Pos{1, 1})
	f.Add(Pos{2, 1})

	if f.Len() != 2 {
		t.Errorf("Len() = %d, want 2", f.Len())
	}
	if !f.Has(Pos{1, 1}) {
		t.Error("Has(1,1) = false, want true")
	}
	if f.Has(Pos{3, 3}) {
		t.Error("Has(3,3) = true, want false")
	}
}

func TestFloorSetSorted(t *testing.T) {
	f := NewFloorSet()
	for _, p := range []Pos{{3, 2}, {1, 1}, {2, 1}, {0, 0}} {
		f.Add(p)
	}

	got := f.Sorted()
	want := []Pos{{0, 0}, {1, 1}, {2, 1}, {3, 2}}
	if len(got) != len(want) {
		t.Fatalf("Sorted() returned %d positions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFloorSetBounds(t *testing.T) {
	f := NewFloorSet()
	if _, ok := f.Bounds(); ok {
		t.Error("Bounds() on empty set should report ok=false")
	}

	f.Add(Pos{2, 3})
	f.Add(Pos{-1, 5})
	f.Add(Pos{4, 0})

	b, ok := f.Bounds()
	if !ok {
		t.Fatal("Bounds() ok = false, want true")
	}
	want := NewRect(-1, 0, 6, 6)
	if b != want {
		t.Errorf("Bounds() = %v, want %v", b, want)
	}
}

func TestFloorSetUnion(t *testing.T) {
	a := NewFloorSet()
	b := NewFloorSet()
	a.Add(Pos{0, 0})
	b.Add(Pos{0, 0})
	b.Add(Pos{1, 0})

	a.Union(b)
	if a.Len() != 2 {
		t.Errorf("Len() after union = %d, want 2", a.Len())
	}
}
