package ecs

import (
	"context"
	"sync"
	"unsafe"
)

// worker is one pool thread: its own mutex/condition pair, a
// ready flag, the current plan-item assignment, and a reusable
// component-pointer scratch slice.
type worker struct {
	ecs *ECS

	mu       sync.Mutex
	cond     *sync.Cond
	ready    bool
	stopping bool
	item     planItem

	scratch []unsafe.Pointer
}

// loop is the worker's run function, launched as a goroutine owned by
// ecs.group: become ready and publish that fact via the ECS-global ready
// counter, wait on its own condition until handed an assignment (or told
// to stop), then run that assignment and repeat.
func (w *worker) loop(ctx context.Context) error {
	for {
		w.mu.Lock()
		w.ready = true
		w.mu.Unlock()

		w.ecs.workersMu.Lock()
		w.ecs.readyThreads++
		w.ecs.workersCond.Broadcast()
		w.ecs.workersMu.Unlock()

		w.mu.Lock()
		for w.ready && !w.stopping {
			w.cond.Wait()
		}
		stopping := w.stopping
		item := w.item
		w.mu.Unlock()

		if stopping {
			return nil
		}
		w.ecs.runPlanItem(&w.scratch, item)
	}
}

// assign hands item to w: clears ready, records the assignment, and
// signals w's own condition variable so its loop wakes from step 1.
func (w *worker) assign(item planItem) {
	w.mu.Lock()
	w.item = item
	w.ready = false
	w.cond.Signal()
	w.mu.Unlock()
}

// stop tells w to exit its loop the next time it is woken.
func (w *worker) stop() {
	w.mu.Lock()
	w.stopping = true
	w.cond.Signal()
	w.mu.Unlock()
}

// awaitReadyWorker blocks until at least one worker is ready, claims it
// (decrementing the ECS-global ready counter) and returns it.
func (ecs *ECS) awaitReadyWorker() *worker {
	ecs.workersMu.Lock()
	defer ecs.workersMu.Unlock()
	for {
		for _, w := range ecs.workers {
			w.mu.Lock()
			ready := w.ready
			w.mu.Unlock()
			if ready {
				ecs.readyThreads--
				return w
			}
		}
		ecs.workersCond.Wait()
	}
}

// awaitAllReady blocks until every worker in the pool is ready — the
// BARRIER / ON_THREAD synchronisation point of a tick.
func (ecs *ECS) awaitAllReady() {
	ecs.workersMu.Lock()
	defer ecs.workersMu.Unlock()
	for ecs.readyThreads < len(ecs.workers) {
		ecs.workersCond.Wait()
	}
}

// extendSlice grows s by n elements, reallocating only if necessary, and
// returns the extended slice. Used below to grow a worker's
// component-pointer scratch buffer on demand as systems' archetypes vary
// in component count.
func extendSlice[T any](s []T, n int) []T {
	newLen := len(s) + n
	if cap(s) >= newLen {
		return s[:newLen]
	}
	newCap := 2 * cap(s)
	if newCap < newLen {
		newCap = newLen
	}
	ns := make([]T, newLen, newCap)
	copy(ns, s)
	return ns
}

// runPlanItem executes one QUEUED or ON_THREAD item on the current
// goroutine (a worker's own goroutine, or the caller's when there are no
// workers). scratch is grown on demand and reused across calls by its
// owner (a worker, or the ECS's own inline scratch buffer).
func (ecs *ECS) runPlanItem(scratch *[]unsafe.Pointer, item planItem) {
	s := item.sys
	if s.archetype == nil || s.archetype.mask.empty() {
		s.update(NoId, nil, s.userdata)
		return
	}

	n := len(s.archetype.componentIDs)
	if cap(*scratch) < n {
		*scratch = extendSlice((*scratch)[:0], n)
	} else {
		*scratch = (*scratch)[:n]
	}
	buf := *scratch

	// end == 0 means the range runs to the queue's current end.
	end := item.end
	if end == 0 {
		end = s.queue.lastFilled
	}
	for id := item.start; id < end; id++ {
		if s.queue.get(id) == nil {
			continue
		}
		for i, compID := range s.archetype.componentIDs {
			buf[i] = ecs.components.getComponent(compID, id)
		}
		s.update(id, buf, s.userdata)
	}
}

// SetThreads grows the worker pool to n workers; shrinking is a logged
// no-op. Newly-started workers are guaranteed ready before SetThreads
// returns. Fails (false) only on a negative n.
func (ecs *ECS) SetThreads(n int) bool {
	if n < 0 {
		logDegrade(newDispatchError(BadArgument, "SetThreads: negative thread count %d", n))
		return false
	}
	current := len(ecs.workers)
	if n <= current {
		if n < current {
			Logger.Warn().Int("requested", n).Int("current", current).
				Msg("SetThreads: shrinking the worker pool is a no-op")
		}
		return true
	}

	for i := current; i < n; i++ {
		w := &worker{ecs: ecs}
		w.cond = sync.NewCond(&w.mu)
		ecs.workers = append(ecs.workers, w)
		ecs.group.Go(func() error { return w.loop(ecs.groupCtx) })
	}
	ecs.awaitAllReady()
	ecs.planDirty = true
	return true
}

// stopWorkers cancels every worker's loop and waits for them to exit,
// letting in-flight updates finish their current entity before returning.
func (ecs *ECS) stopWorkers() {
	if ecs.groupCancel != nil {
		ecs.groupCancel()
	}
	for _, w := range ecs.workers {
		w.stop()
	}
	if ecs.group != nil {
		_ = ecs.group.Wait()
	}
	ecs.workers = nil
	ecs.readyThreads = 0
}
