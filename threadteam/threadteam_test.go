package threadteam

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBarrierReleasesAllMembersTogether(t *testing.T) {
	const n = 4
	comm := NewComm[float64](n)

	var before, after int32
	var wg sync.WaitGroup
	wg.Add(n)
	for id := 0; id < n; id++ {
		go func(id int) {
			defer wg.Done()
			info := NewInfo(id, comm)
			atomic.AddInt32(&before, 1)
			info.Barrier()
			// Every goroutine should see all n arrivals recorded by the
			// time any of them passes the barrier.
			if got := atomic.LoadInt32(&before); got != n {
				t.Errorf("thread %d passed barrier with only %d of %d arrivals seen", id, got, n)
			}
			atomic.AddInt32(&after, 1)
		}(id)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutines never returned from Barrier; deadlock")
	}
	if after != n {
		t.Errorf("after = %d, want %d", after, n)
	}
}

func TestBarrierReusableAcrossRounds(t *testing.T) {
	const n = 3
	const rounds = 5
	comm := NewComm[float64](n)

	var wg sync.WaitGroup
	wg.Add(n)
	for id := 0; id < n; id++ {
		go func(id int) {
			defer wg.Done()
			info := NewInfo(id, comm)
			for r := 0; r < rounds; r++ {
				info.Barrier()
			}
		}(id)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutines never finished; barrier did not re-arm across rounds")
	}
}

func TestBroadcastDeliversThreadZerosValue(t *testing.T) {
	const n = 4
	comm := NewComm[float64](n)

	results := make([]int, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for id := 0; id < n; id++ {
		go func(id int) {
			defer wg.Done()
			info := NewInfo(id, comm)
			// Every thread passes a different value; only thread 0's
			// should win.
			results[id] = Broadcast[float64, int](info, id*100+7)
		}(id)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutines never returned from Broadcast; deadlock")
	}

	for id, got := range results {
		if got != 7 {
			t.Errorf("thread %d received %d, want 7 (thread 0's value)", id, got)
		}
	}
}

// TestBroadcastSurvivesThreadZeroRunningFirst reproduces the scenario
// where the producer finishes and returns before a consumer has even
// entered Broadcast: thread 0 is given no delay while every consumer is
// held back with a short sleep, so thread 0 is guaranteed to reach (and,
// absent the receiver-count handshake, leave) Broadcast well before any
// consumer looks at broadcastRound.
func TestBroadcastSurvivesThreadZeroRunningFirst(t *testing.T) {
	const n = 4
	comm := NewComm[float64](n)
	infos := make([]*Info[float64], n)
	for id := 0; id < n; id++ {
		infos[id] = NewInfo(id, comm)
	}

	results := make([]int, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for id := 0; id < n; id++ {
		go func(id int) {
			defer wg.Done()
			if id != 0 {
				time.Sleep(50 * time.Millisecond)
			}
			results[id] = Broadcast[float64, int](infos[id], id*100+7)
		}(id)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutines never returned from Broadcast; thread 0 ran ahead and stranded a late consumer")
	}
	for id, got := range results {
		if got != 7 {
			t.Errorf("thread %d received %d, want 7 (thread 0's value)", id, got)
		}
	}
}

// TestBroadcastReusableAcrossRoundsWithPersistentInfo drives several
// broadcast rounds through the same *Info instances (as one SpawnThreads
// invocation does when several Pack stages broadcast in turn), confirming each round's value is delivered
// even though thread 0 may win the race to call Broadcast in any round.
func TestBroadcastReusableAcrossRoundsWithPersistentInfo(t *testing.T) {
	const n = 3
	const rounds = 20
	comm := NewComm[float64](n)
	infos := make([]*Info[float64], n)
	for id := 0; id < n; id++ {
		infos[id] = NewInfo(id, comm)
	}

	for r := 0; r < rounds; r++ {
		results := make([]int, n)
		var wg sync.WaitGroup
		wg.Add(n)
		for id := 0; id < n; id++ {
			go func(id int) {
				defer wg.Done()
				results[id] = Broadcast[float64, int](infos[id], r*1000+id)
			}(id)
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("round %d: goroutines never returned from Broadcast; deadlock", r)
		}
		for id, got := range results {
			if got != r*1000 {
				t.Errorf("round %d: thread %d received %d, want %d (thread 0's value)", r, id, got, r*1000)
			}
		}
	}
}

func TestSingleThreadBarrierDoesNotBlock(t *testing.T) {
	info := SingleThread[float64]()
	done := make(chan struct{})
	go func() {
		info.Barrier()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Barrier on a single-thread team blocked")
	}
	if info.NThreads() != 1 {
		t.Errorf("NThreads() = %d, want 1", info.NThreads())
	}
}
