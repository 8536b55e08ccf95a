package ctrl

import (
	"sync"
	"testing"

	"github.com/latticeforge/gemmtree/matrix"
	"github.com/latticeforge/gemmtree/threadteam"
)

// countingLeaf counts how many distinct *countingLeaf instances ran, and
// how many times each one's Run was invoked, to check SpawnThreads' lazy
// per-worker child cache.
type countingLeaf struct {
	mu    sync.Mutex
	calls int
}

func (l *countingLeaf) Run(a, b, c *matrix.General[float64], thr *threadteam.Info[float64]) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
}

func (l *countingLeaf) HierarchyDescription() []matrix.AlgorithmStep {
	return []matrix.AlgorithmStep{{Kind: matrix.StepM, Bsz: 4}}
}

func newGeneralOperands() (a, b, c *matrix.General[float64]) {
	a = matrix.NewGeneral[float64](4, 4)
	b = matrix.NewGeneral[float64](4, 4)
	c = matrix.NewGeneral[float64](4, 4)
	a.PushYView(a.IterHeight())
	a.PushXView(a.IterWidth())
	b.PushYView(b.IterHeight())
	b.PushXView(b.IterWidth())
	c.PushYView(c.IterHeight())
	c.PushXView(c.IterWidth())
	return
}

func TestSpawnThreadsBuildsOneChildPerWorkerAndRunsEach(t *testing.T) {
	var built []*countingLeaf
	var mu sync.Mutex
	newChild := func() GemmNode[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]] {
		l := &countingLeaf{}
		mu.Lock()
		built = append(built, l)
		mu.Unlock()
		return l
	}

	s := NewSpawnThreads[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]](newChild)
	s.SetNThreads(3)

	a, b, c := newGeneralOperands()
	s.Run(a, b, c, nil)

	mu.Lock()
	defer mu.Unlock()
	if len(built) != 3 {
		t.Fatalf("built %d children, want 3 (one per worker slot)", len(built))
	}
	for i, l := range built {
		l.mu.Lock()
		calls := l.calls
		l.mu.Unlock()
		if calls != 1 {
			t.Errorf("worker %d child ran %d times, want 1", i, calls)
		}
	}
}

func TestSpawnThreadsReusesCachedChildAcrossRuns(t *testing.T) {
	var built int
	newChild := func() GemmNode[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]] {
		built++
		return &countingLeaf{}
	}

	s := NewSpawnThreads[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]](newChild)

	a, b, c := newGeneralOperands()
	s.Run(a, b, c, nil)
	s.Run(a, b, c, nil)

	if built != 1 {
		t.Errorf("newChild invoked %d times across two Run calls with n_threads=1, want 1 (cached)", built)
	}
}

func TestSpawnThreadsSetNThreadsInvalidatesCache(t *testing.T) {
	var built int
	newChild := func() GemmNode[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]] {
		built++
		return &countingLeaf{}
	}

	s := NewSpawnThreads[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]](newChild)
	a, b, c := newGeneralOperands()
	s.Run(a, b, c, nil)
	s.SetNThreads(2)
	s.Run(a, b, c, nil)

	if built != 3 {
		t.Errorf("newChild invoked %d times (1 before resize + 2 after), want 3", built)
	}
}

func TestSpawnThreadsHierarchyDescriptionUsesWorkerZerosChild(t *testing.T) {
	newChild := func() GemmNode[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]] {
		return &countingLeaf{}
	}
	s := NewSpawnThreads[float64, *matrix.General[float64], *matrix.General[float64], *matrix.General[float64]](newChild)

	want := []matrix.AlgorithmStep{{Kind: matrix.StepM, Bsz: 4}}
	got := s.HierarchyDescription()
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("HierarchyDescription() = %v, want %v", got, want)
	}
}
