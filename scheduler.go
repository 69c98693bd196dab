package ecs

// planKind tags one linearised plan item.
type planKind int

const (
	planQueued planKind = iota
	planOnThread
	planBarrier
)

// planItem is one step of a dispatch plan. For planBarrier, sys is nil and
// start/end are unused. For a system whose archetype is nil or empty,
// start == end == 0, meaning "invoke Update once with no entity" rather
// than scanning an entity-index range. For any other system, end == 0
// means the range runs from start to the end of the system's queue at
// dispatch time.
type planItem struct {
	kind  planKind
	sys   *system
	start Id
	end   Id
}

func (p planItem) rangeLen() int {
	if p.end <= p.start {
		return 0
	}
	return int(p.end - p.start)
}

// threadMinLoad is the tunable minimum per-worker slice size below which a
// queued system's range is not split across workers.
const threadMinLoad = 1000

// arrange recomputes ecs.plan from the current system order and worker
// count, and clears planDirty. ecs.systemOrder is first brought into an
// order that respects every system's After dependencies (tie-broken by
// registration order for systems with no ordering constraint between
// them), then walked in that order, inserting a BARRIER whenever the next
// system is not known to be safe to parallel-compose with every item
// appended since the last barrier, or when the next system names one of
// them in its After set.
func (ecs *ECS) arrange() {
	ecs.systemOrder = ecs.topoSortSystems()
	ecs.plan = ecs.plan[:0]

	for _, s := range ecs.systemOrder {
		start, end := s.queueRange()

		if ecs.conflictsSinceBarrier(s) {
			ecs.plan = append(ecs.plan, planItem{kind: planBarrier})
		}

		if !s.threadSafe {
			ecs.plan = append(ecs.plan, planItem{kind: planOnThread, sys: s, start: start, end: end})
			continue
		}

		rangeLen := planItem{start: start, end: end}.rangeLen()
		if ecs.workerCount() > 1 && rangeLen >= threadMinLoad {
			chunks := ecs.workerCount()
			if need := (rangeLen + threadMinLoad - 1) / threadMinLoad; need < chunks {
				chunks = need
			}
			chunkLen := (rangeLen + chunks - 1) / chunks
			for cs := start; cs < end; cs += Id(chunkLen) {
				ce := cs + Id(chunkLen)
				if ce > end {
					ce = end
				}
				ecs.plan = append(ecs.plan, planItem{kind: planQueued, sys: s, start: cs, end: ce})
			}
		} else {
			ecs.plan = append(ecs.plan, planItem{kind: planQueued, sys: s, start: start, end: end})
		}
	}

	ecs.planDirty = false
}

// queueRange returns [first_present_index, last_filled) of the system's
// entity queue; for an empty queue lastFilled is 0, so the range runs to
// the queue's end at dispatch time. For an archetype-less system the range is
// the trivial (0, 0): dispatch invokes Update once with no entity instead
// of scanning a range.
func (s *system) queueRange() (Id, Id) {
	if s.archetype == nil || s.archetype.mask.empty() {
		return 0, 0
	}
	start := s.queue.next(0)
	return start, s.queue.lastFilled
}

// conflictsSinceBarrier walks the plan backward from its tail, stopping at
// the first BARRIER, and reports whether any system appended since then
// either shares a component type with s (systemsInParallel fails) or is
// named in s's After set — i.e. whether a BARRIER must be inserted before
// s can be appended. An After dependency forces a barrier even when the
// two systems' archetypes are disjoint, since queued systems on either
// side of a barrier may otherwise run concurrently on different workers
// with no ordering between them.
func (ecs *ECS) conflictsSinceBarrier(s *system) bool {
	for i := len(ecs.plan) - 1; i >= 0; i-- {
		item := ecs.plan[i]
		if item.kind == planBarrier {
			return false
		}
		if item.sys == nil {
			continue
		}
		if s.after.has(item.sys.nameHash) {
			return true
		}
		if !systemsInParallel(item.sys, s) {
			return true
		}
	}
	return false
}

// systemsInParallel is the "safe to parallel-compose" predicate: true iff
// the two systems' archetypes share no component type. A system with a
// nil/empty archetype never conflicts (it touches no component column).
func systemsInParallel(a, b *system) bool {
	if a == nil || b == nil || a.archetype == nil || b.archetype == nil {
		return true
	}
	return !a.archetype.mask.intersects(b.archetype.mask)
}

// topoSortSystems returns ecs.systemOrder reordered so that every system
// appears after every other registered system named in its After set,
// breaking ties by original registration order. It's a stable
// Kahn's-algorithm variant: repeatedly scan the remaining systems in
// their current order and take the first one whose After dependencies
// have all already been placed; if none qualifies (a dependency cycle),
// take the first remaining system rather than loop forever. After names
// that refer to an unregistered system are ignored, since there is
// nothing to order against.
func (ecs *ECS) topoSortSystems() []*system {
	remaining := make([]*system, len(ecs.systemOrder))
	copy(remaining, ecs.systemOrder)

	placed := make(map[Id]bool, len(remaining))
	ordered := make([]*system, 0, len(remaining))

	for len(remaining) > 0 {
		pick := -1
		for i, s := range remaining {
			ready := true
			s.after.each(func(dep Id) {
				if !placed[dep] && ecs.systems.has(dep) {
					ready = false
				}
			})
			if ready {
				pick = i
				break
			}
		}
		if pick == -1 {
			pick = 0
		}

		s := remaining[pick]
		ordered = append(ordered, s)
		placed[s.nameHash] = true
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}

	return ordered
}
