package mapgen

import (
	"testing"

	"github.com/lawnchairsociety/levelgen/internal/grid"
	"github.com/lawnchairsociety/levelgen/internal/wfc"
)

func TestAssembleDropsOffFloorLabels(t *testing.T) {
	floor := grid.NewFloorSet()
	floor.Add(grid.Pos{X: 1, Y: 1})
	floor.Add(grid.Pos{X: 2, Y: 1})

	m := Assemble(floor, map[grid.Pos]wfc.Category{
		{X: 1, Y: 1}: wfc.CategoryHazard,
		{X: 9, Y: 9}: wfc.CategoryCollectible,
	})

	if len(m.Labels) != 1 {
		t.Fatalf("len(Labels) = %d, want 1", len(m.Labels))
	}

	tests := []struct {
		pos    grid.Pos
		want   wfc.Category
		wantOK bool
	}{
		{grid.Pos{X: 1, Y: 1}, wfc.CategoryHazard, true},
		{grid.Pos{X: 2, Y: 1}, wfc.CategoryEmpty, true},
		{grid.Pos{X: 9, Y: 9}, "", false},
		{grid.Pos{X: 0, Y: 0}, "", false},
	}
	for _, tc := range tests {
		got, ok := m.CategoryAt(tc.pos)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("CategoryAt(%v) = (%q, %v), want (%q, %v)", tc.pos, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestCompleteMapCellsAndCounts(t *testing.T) {
	floor := grid.NewFloorSet()
	for _, p := range []grid.Pos{{X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}} {
		floor.Add(p)
	}
	m := Assemble(floor, map[grid.Pos]wfc.Category{{X: 0, Y: 1}: wfc.CategoryPlayerSpawn})

	cells := m.Cells()
	want := []Cell{
		{grid.Pos{X: 1, Y: 0}, wfc.CategoryEmpty},
		{grid.Pos{X: 2, Y: 0}, wfc.CategoryEmpty},
		{grid.Pos{X: 0, Y: 1}, wfc.CategoryPlayerSpawn},
	}
	if len(cells) != len(want) {
		t.Fatalf("len(Cells()) = %d, want %d", len(cells), len(want))
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("Cells()[%d] = %v, want %v", i, cells[i], want[i])
		}
	}

	counts := m.Counts()
	if counts[wfc.CategoryEmpty] != 2 || counts[wfc.CategoryPlayerSpawn] != 1 {
		t.Errorf("Counts() = %v", counts)
	}
}

func TestCompleteMapBounds(t *testing.T) {
	floor := grid.NewFloorSet()
	floor.Add(grid.Pos{X: -2, Y: 3})
	floor.Add(grid.Pos{X: 4, Y: 12})

	m := Assemble(floor, nil)
	m.Width, m.Height = 10, 10

	if got, want := m.Bounds(), grid.NewRect(-2, 0, 12, 13); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}

	empty := Assemble(grid.NewFloorSet(), nil)
	empty.Width, empty.Height = 5, 4
	if got, want := empty.Bounds(), grid.NewRect(0, 0, 5, 4); got != want {
		t.Errorf("Bounds() of empty map = %v, want %v", got, want)
	}
}
