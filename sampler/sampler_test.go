package sampler

import (
	"errors"
	"testing"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
)

func TestMix(t *testing.T) {
	tests := []struct {
		x, z int32
		want uint64
	}{
		{0, 0, 0},
		{1, 0, 11400835581346112721},
		{0, 1, 9172147297706771295},
		{-1, -1, 7046136215824491728},
		{-20, 20, 1497095022478360463},
		{2147483647, -2147483648, 11632064722643838562},
	}
	for _, tc := range tests {
		if got := Mix(tc.x, tc.z); got != tc.want {
			t.Errorf("Mix(%d, %d) = %d, expected %d", tc.x, tc.z, got, tc.want)
		}
	}
}

func TestOracle(t *testing.T) {
	oracle, err := NewOracle(2048)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle.Space() != 2048 {
		t.Errorf("expected space 2048, got %d", oracle.Space())
	}
	if h := oracle.Hash(chunkgrid.Point2d{1, 0}); h != 1233 {
		t.Errorf("expected masked hash 1233, got %d", h)
	}
	if h := oracle.Hash(chunkgrid.Point2d{-20, 20}); h != 1935 {
		t.Errorf("expected masked hash 1935, got %d", h)
	}
	for _, space := range []uint64{0, 3, 1000, 2049} {
		if _, err := NewOracle(space); !errors.Is(err, chunkgrid.ErrBadConfig) {
			t.Errorf("expected ErrBadConfig for space %d, got %v", space, err)
		}
	}
}

func TestQueueOrder(t *testing.T) {
	var q cellQueue
	cells := []Cell{
		{chunkgrid.Point2d{3, 1}, 7},
		{chunkgrid.Point2d{0, 0}, 9},
		{chunkgrid.Point2d{2, 5}, 7},
		{chunkgrid.Point2d{2, 4}, 7},
		{chunkgrid.Point2d{-1, 0}, 8},
		{chunkgrid.Point2d{5, 5}, 1},
	}
	for _, c := range cells {
		q.push(c)
	}
	expected := []chunkgrid.Point2d{{5, 5}, {2, 4}, {2, 5}, {3, 1}, {-1, 0}, {0, 0}}
	for i, pos := range expected {
		c, ok := q.pop()
		if !ok {
			t.Fatalf("queue empty after %d pops", i)
		}
		if c.Pos != pos {
			t.Errorf("pop %d: expected %s, got %s", i, pos, c.Pos)
		}
	}
	if _, ok := q.pop(); ok {
		t.Errorf("expected empty queue")
	}
}

// The hash space has 8 values and K = 2, so the floor is 6.
func TestSeededTableSpansColumns(t *testing.T) {
	table := Table{
		{0, 0}: 3, {0, 1}: 5,
		{1, 0}: 7, {1, 1}: 2,
		{2, 0}: 6, {2, 1}: 7,
	}
	cfg := Config{Width: 2, Size: 2, HashSpace: 8, MaxColumns: 10}
	if cfg.Floor() != 6 {
		t.Fatalf("expected floor 6, got %d", cfg.Floor())
	}
	s, err := New(cfg, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cluster, err := s.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cluster.Columns != 3 {
		t.Errorf("expected 3 columns scanned, got %d", cluster.Columns)
	}
	expected := []Cell{
		{chunkgrid.Point2d{2, 0}, 6},
		{chunkgrid.Point2d{1, 0}, 7},
	}
	if len(cluster.Cells) != len(expected) {
		t.Fatalf("expected %d cells, got %v", len(expected), cluster.Cells)
	}
	for i, c := range expected {
		if cluster.Cells[i] != c {
			t.Errorf("cell %d: expected %v, got %v", i, c, cluster.Cells[i])
		}
	}
	if len(cluster.Pending) != 1 || cluster.Pending[0] != (Cell{chunkgrid.Point2d{2, 1}, 7}) {
		t.Errorf("unexpected pending candidates: %v", cluster.Pending)
	}
	ext := cluster.Extent()
	if ext.Width != 3 || ext.Height != 2 || ext.Origin != (chunkgrid.Point2d{0, 0}) {
		t.Errorf("unexpected extent %+v", ext)
	}
}

func TestSeededTableFirstColumn(t *testing.T) {
	table := Table{
		{0, 0}: 6, {0, 1}: 7,
		{1, 0}: 6, {1, 1}: 6,
	}
	s, err := New(Config{Width: 2, Size: 2, HashSpace: 8, MaxColumns: 10}, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cluster, err := s.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cluster.Columns != 1 {
		t.Errorf("expected a single column scanned, got %d", cluster.Columns)
	}
	pts := cluster.Points()
	if len(pts) != 2 || pts[0] != (chunkgrid.Point2d{0, 0}) || pts[1] != (chunkgrid.Point2d{0, 1}) {
		t.Errorf("unexpected cluster %v", pts)
	}
}

func TestUnsatisfiable(t *testing.T) {
	// Every coordinate hashes to zero, below any floor.
	s, err := New(Config{Width: 4, Size: 3, HashSpace: 16, MaxColumns: 10}, Table{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Run(); !errors.Is(err, chunkgrid.ErrUnsatisfiable) {
		t.Errorf("expected ErrUnsatisfiable, got %v", err)
	}

	cfg := Config{Width: 4, Size: 9, HashSpace: 16, MaxColumns: 2}
	if err := cfg.Validate(); !errors.Is(err, chunkgrid.ErrUnsatisfiable) {
		t.Errorf("expected ErrUnsatisfiable for scan area smaller than K, got %v", err)
	}
}

func TestBadConfig(t *testing.T) {
	good := Config{Width: 4, Size: 3, HashSpace: 16, MaxColumns: 10}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []Config{
		{Width: 4, Size: 3, HashSpace: 12, MaxColumns: 10},
		{Width: 0, Size: 3, HashSpace: 16, MaxColumns: 10},
		{Width: 4, Size: 0, HashSpace: 16, MaxColumns: 10},
		{Width: 4, Size: 17, HashSpace: 16, MaxColumns: 10},
		{Width: 4, Size: 3, HashSpace: 16, MaxColumns: 0},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); !errors.Is(err, chunkgrid.ErrBadConfig) {
			t.Errorf("expected ErrBadConfig for %+v, got %v", cfg, err)
		}
		if _, err := New(cfg, Table{}); err == nil {
			t.Errorf("expected New to fail for %+v", cfg)
		}
	}
	if _, err := New(good, nil); !errors.Is(err, chunkgrid.ErrBadConfig) {
		t.Errorf("expected ErrBadConfig for nil hasher, got %v", err)
	}
}

func TestLiveClusters(t *testing.T) {
	tests := []struct {
		cfg     Config
		columns int32
		first   Cell
	}{
		{
			Config{Offset: chunkgrid.Point2d{0, 0}, Width: 16, Size: 20, HashSpace: 256, MaxColumns: 1000},
			24, Cell{chunkgrid.Point2d{3, 12}, 236},
		},
		{
			Config{Offset: chunkgrid.Point2d{-20, 20}, Width: 50, Size: 810, HashSpace: 2048, MaxColumns: 1000},
			51, Cell{chunkgrid.Point2d{26, 35}, 1238},
		},
		{
			Config{Offset: chunkgrid.Point2d{3, -7}, Width: 8, Size: 5, HashSpace: 64, MaxColumns: 1000},
			5, Cell{chunkgrid.Point2d{4, -7}, 59},
		},
	}
	for _, tc := range tests {
		cluster, err := Sample(tc.cfg)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", tc.cfg, err)
		}
		if cluster.Columns != tc.columns {
			t.Errorf("expected %d columns for %+v, got %d", tc.columns, tc.cfg, cluster.Columns)
		}
		if cluster.Cells[0] != tc.first {
			t.Errorf("expected first accepted cell %v, got %v", tc.first, cluster.Cells[0])
		}
		checkCluster(t, tc.cfg, cluster)

		// The scanned region is minimal: one column less cannot satisfy the cluster size.
		fewer := tc.cfg
		fewer.MaxColumns = cluster.Columns - 1
		if fewer.MaxColumns > 0 {
			if _, err := Sample(fewer); !errors.Is(err, chunkgrid.ErrUnsatisfiable) {
				t.Errorf("expected ErrUnsatisfiable with %d columns, got %v", fewer.MaxColumns, err)
			}
		}

		// Deterministic across runs.
		again, err := Sample(tc.cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range cluster.Cells {
			if cluster.Cells[i] != again.Cells[i] {
				t.Fatalf("cell %d differs between runs: %v vs %v", i, cluster.Cells[i], again.Cells[i])
			}
		}
	}
}

func checkCluster(t *testing.T, cfg Config, cluster *Cluster) {
	t.Helper()
	if len(cluster.Cells) != cfg.Size {
		t.Fatalf("expected %d cells, got %d", cfg.Size, len(cluster.Cells))
	}
	oracle, _ := NewOracle(cfg.HashSpace)
	ext := cluster.Extent()
	seen := make(map[chunkgrid.Point2d]struct{}, len(cluster.Cells))
	floor := cfg.Floor()
	for i, c := range cluster.Cells {
		if _, dup := seen[c.Pos]; dup {
			t.Errorf("duplicate cell %s", c.Pos)
		}
		seen[c.Pos] = struct{}{}
		if !ext.Contains(c.Pos) {
			t.Errorf("cell %s outside scanned extent %+v", c.Pos, ext)
		}
		if h := oracle.Hash(c.Pos); h != c.Hash {
			t.Errorf("cell %s carries hash %d, oracle gives %d", c.Pos, c.Hash, h)
		}
		if c.Hash < floor || c.Hash > floor+uint64(i) {
			t.Errorf("cell %d hash %d outside admission window [%d, %d]", i, c.Hash, floor, floor+uint64(i))
		}
	}
	last := cluster.Cells[len(cluster.Cells)-1]
	for _, p := range cluster.Pending {
		if p.Hash < last.Hash {
			t.Errorf("pending candidate %v beats last accepted %v", p, last)
		}
		if _, dup := seen[p.Pos]; dup {
			t.Errorf("pending candidate %s was also accepted", p.Pos)
		}
	}

	// Every scanned cell at or above the floor is either accepted or pending.
	var candidates int
	for x := ext.Origin[0]; x < ext.Origin[0]+ext.Width; x++ {
		for z := ext.Origin[1]; z < ext.Origin[1]+ext.Height; z++ {
			if oracle.Hash(chunkgrid.Point2d{x, z}) >= floor {
				candidates++
			}
		}
	}
	if candidates != len(cluster.Cells)+len(cluster.Pending) {
		t.Errorf("expected %d candidates in scanned region, got %d accepted + %d pending",
			candidates, len(cluster.Cells), len(cluster.Pending))
	}
}
