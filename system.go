package ecs

import "unsafe"

// UpdateFunc is a system's per-entity update callback. components holds one
// pointer per archetype component, in archetype declaration order; it is a
// reused scratch buffer — a system must not retain it past the call. For an
// archetype-less system (one registered with a nil Archetype) Update is
// invoked exactly once per tick with a nil entity and an empty slice.
type UpdateFunc func(entity Id, components []unsafe.Pointer, userdata any)

// EventFunc is a system's optional event callback, invoked once per queued
// event at end of tick, in submission order.
type EventFunc func(event any, userdata any)

// SystemRegistration describes a system to register.
type SystemRegistration struct {
	Name      string
	Archetype *Archetype
	Update    UpdateFunc
	Event     EventFunc // optional

	UserData any

	// ThreadSafe, UpdatesOtherEntities and CreatesOrDeletes jointly derive
	// the stored thread-safety flag: threadSafe = ThreadSafe &&
	// !UpdatesOtherEntities && !CreatesOrDeletes.
	ThreadSafe           bool
	UpdatesOtherEntities bool
	CreatesOrDeletes     bool

	// After lists the names of systems that must complete, behind a
	// drained barrier, before this one starts within a tick.
	After []string
}

// system is the registered, runnable form of a SystemRegistration.
type system struct {
	name      string
	nameHash  Id
	archetype *Archetype
	update    UpdateFunc
	event     EventFunc
	userdata  any

	threadSafe bool
	after      hashset // set of name hashes this system must follow

	queue  *sparseArray[struct{}] // entity ids currently matching archetype
	events eventQueue
}

const defaultQueueChunk = 64

// RegisterSystem validates and installs reg, allocating its entity queue
// and event FIFO, appending it to the system order (registration order),
// and marking the scheduler's plan dirty. Fails (false) on an empty name
// or a duplicate name; prior state is left untouched.
func (ecs *ECS) RegisterSystem(reg SystemRegistration) bool {
	if reg.Name == "" {
		logDegrade(newDispatchError(BadArgument, "system registration requires a non-empty name"))
		return false
	}
	nameHash := HashName(reg.Name)
	if ecs.systems.has(nameHash) {
		logDegrade(newDispatchError(DuplicateRegistration, "system %q already registered", reg.Name))
		return false
	}

	s := &system{
		name:       reg.Name,
		nameHash:   nameHash,
		archetype:  reg.Archetype,
		update:     reg.Update,
		event:      reg.Event,
		userdata:   reg.UserData,
		threadSafe: reg.ThreadSafe && !reg.UpdatesOtherEntities && !reg.CreatesOrDeletes,
		after:      newHashset(len(reg.After)),
		queue:      newSparseArray[struct{}](ecs.systemEntitiesHint, defaultQueueChunk, true),
	}
	for _, dep := range reg.After {
		s.after.add(HashName(dep))
	}

	ecs.systems.insert(nameHash, s)
	ecs.systemOrder = append(ecs.systemOrder, s)
	ecs.planDirty = true

	// A freshly-registered system starts with an empty queue; run
	// collection update against every existing entity so it picks up
	// whatever already matches its archetype.
	if s.archetype != nil {
		ecs.entities.each(func(id Id, rec *entityRecord) {
			if rec.mask.contains(s.archetype.mask) {
				s.queue.insert(id, nil)
			}
		})
	}
	return true
}

// UnregisterSystem removes name from the system order, freeing its entity
// queue and event FIFO, and marks the plan dirty. A no-op if name is not
// registered.
func (ecs *ECS) UnregisterSystem(name string) {
	nameHash := HashName(name)
	ptr := ecs.systems.get(nameHash)
	if ptr == nil {
		return
	}
	target := *ptr
	ecs.systems.delete(nameHash)
	for i, s := range ecs.systemOrder {
		if s == target {
			ecs.systemOrder = append(ecs.systemOrder[:i], ecs.systemOrder[i+1:]...)
			break
		}
	}
	ecs.planDirty = true
}

// QueueEvent appends ev to name's event FIFO, to be drained into its event
// callback at the end of the current or next tick. Fails if name is not a
// registered system.
func (ecs *ECS) QueueEvent(name string, ev any) bool {
	ptr := ecs.systems.get(HashName(name))
	if ptr == nil {
		logDegrade(newDispatchError(UnknownSystem, "cannot queue event for unregistered system %q", name))
		return false
	}
	(*ptr).events.push(ev)
	return true
}

// updateCollections is the "collection update" run eagerly after every
// component attach/detach, against every registered system: entity's
// membership in each system's queue is brought back in sync with whether
// mask is a superset of that system's archetype. A system declared with a
// nil (or empty) archetype is never queued — it runs once per tick with no
// entity.
func (ecs *ECS) updateCollections(entity Id, mask componentMask) {
	for _, s := range ecs.systemOrder {
		if s.archetype == nil || s.archetype.mask.empty() {
			continue
		}
		if mask.contains(s.archetype.mask) {
			s.queue.insert(entity, nil)
		} else {
			s.queue.delete(entity)
		}
	}
}
