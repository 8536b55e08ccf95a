// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package threadteam implements the barrier-and-broadcast communicator a
// fixed team of workers shares for the duration of one GEMM invocation
// (ThreadComm/ThreadInfo), plus the persistent pinned worker pool
// (SpawnThreads' fork/join primitive) that keeps per-worker control-tree
// state alive across invocations.
package threadteam

import "sync"

// Comm is the synchronization object a fixed-size worker team shares for
// exactly one top-level GEMM invocation: a barrier and a single-slot
// broadcast channel, re-armed each round.
type Comm[T any] struct {
	nThreads int

	mu      sync.Mutex
	cond    *sync.Cond
	arrived int
	round   int

	broadcastVal      any
	broadcastRound    int
	broadcastConsumed int
}

// NewComm creates a communicator for a team of the given size.
func NewComm[T any](nThreads int) *Comm[T] {
	c := &Comm[T]{nThreads: nThreads}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Info is the per-worker handle into a Comm: thread ID plus a reference to
// the shared communicator. All synchronization calls hang off Info, never
// directly off Comm, mirroring the source's ThreadInfo/ThreadComm split.
type Info[T any] struct {
	ThreadID int
	comm     *Comm[T]

	// broadcastSeen is this worker's own bookkeeping of the last broadcast
	// round it consumed. It must live on Info, not be recomputed from Comm
	// state at call time: a thread that enters Broadcast after thread 0 has
	// already produced and moved on needs to tell "already produced, take
	// it" apart from "not produced yet, wait for it", and only a value it
	// remembers across calls can make that distinction.
	broadcastSeen int
}

// NewInfo wraps a Comm with a specific worker's identity.
func NewInfo[T any](threadID int, comm *Comm[T]) *Info[T] {
	return &Info[T]{ThreadID: threadID, comm: comm}
}

// SingleThread returns the singleton ThreadInfo a top-level algorithm is
// invoked with before any SpawnThreads stage overrides it with a real
// team: id 0, team size 1.
func SingleThread[T any]() *Info[T] {
	return NewInfo[T](0, NewComm[T](1))
}

// NThreads reports the team size.
func (i *Info[T]) NThreads() int {
	return i.comm.nThreads
}

// Barrier blocks the calling goroutine until every member of the team has
// called Barrier for the current round.
func (i *Info[T]) Barrier() {
	c := i.comm
	c.mu.Lock()
	defer c.mu.Unlock()

	myRound := c.round
	c.arrived++
	if c.arrived == c.nThreads {
		c.arrived = 0
		c.round++
		c.cond.Broadcast()
		return
	}
	for c.round == myRound {
		c.cond.Wait()
	}
}

// Broadcast is called by every member of the team with the same logical
// round: thread 0's value val is the one every member receives back,
// regardless of what non-zero threads pass in. The call is sandwiched
// between two barriers by its caller (Pack stages do this), so the value
// is visible to every consumer before any of them proceeds past the
// second barrier.
//
// Thread 0 does not return until every other member has consumed the
// value it produced (broadcastConsumed reaches nThreads-1), so a second
// call to Broadcast can never start production for a new round while a
// straggler is still reading the previous one. Consumers compare the
// current round against their own persisted broadcastSeen rather than a
// value freshly read at call entry: a consumer arriving after thread 0
// has already produced and moved past its wait must recognize the value
// is already there for the taking, not block for a production that will
// never come again this round.
func Broadcast[T any, V any](i *Info[T], val V) V {
	c := i.comm
	c.mu.Lock()
	defer c.mu.Unlock()

	if i.ThreadID == 0 {
		c.broadcastVal = val
		c.broadcastRound++
		c.broadcastConsumed = 0
		c.cond.Broadcast()
		for c.broadcastConsumed < c.nThreads-1 {
			c.cond.Wait()
		}
		i.broadcastSeen = c.broadcastRound
		return val
	}

	for c.broadcastRound == i.broadcastSeen {
		c.cond.Wait()
	}
	i.broadcastSeen = c.broadcastRound
	out, _ := c.broadcastVal.(V)
	c.broadcastConsumed++
	c.cond.Broadcast()
	return out
}
