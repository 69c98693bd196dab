package ecs

import "sync"

// cbKind tags one deferred command.
type cbKind int

const (
	cbCreateEntity cbKind = iota
	cbDeleteEntity
	cbAttachComponent
	cbDetachComponent
)

type cbCommand struct {
	kind cbKind
	arg0 Id // entity (real or placeholder), or unused for CreateEntity
	arg1 Id // component type, for Attach/Detach
}

// CommandBuffer is a lock-protected FIFO of deferred structural mutations.
// Workers append to it concurrently during a tick; its contents are
// applied, in submission order, at the next barrier.
type CommandBuffer struct {
	ecs *ECS
	id  Id

	mu        sync.Mutex
	commands  []cbCommand
	nextPlace Id // buffer-local placeholder counter, starts at 1
}

// NewCommandBuffer allocates a buffer in the ECS's buffer table.
func (ecs *ECS) NewCommandBuffer() *CommandBuffer {
	if ecs.buffers == nil {
		ecs.buffers = newSparseArray[CommandBuffer](4, 4, true)
	}
	id, ptr := ecs.buffers.insertFree(nil)
	ptr.ecs = ecs
	ptr.id = id
	ptr.nextPlace = 1
	return ptr
}

// Delete discards cb without applying its pending commands.
func (cb *CommandBuffer) Delete() {
	cb.ecs.buffers.delete(cb.id)
}

// CreateEntity enqueues an entity creation and returns a placeholder id,
// local to this buffer, that later calls on this same buffer may use to
// refer to the not-yet-real entity.
func (cb *CommandBuffer) CreateEntity() Id {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	placeholder := cb.nextPlace
	cb.nextPlace++
	cb.commands = append(cb.commands, cbCommand{kind: cbCreateEntity, arg0: placeholder})
	return placeholder
}

// DeleteEntity enqueues deletion of id (a real entity id, or a
// placeholder minted earlier by this same buffer).
func (cb *CommandBuffer) DeleteEntity(id Id) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.commands = append(cb.commands, cbCommand{kind: cbDeleteEntity, arg0: id})
}

// AddComponent enqueues attaching typ to id.
func (cb *CommandBuffer) AddComponent(id, typ Id) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.commands = append(cb.commands, cbCommand{kind: cbAttachComponent, arg0: id, arg1: typ})
}

// RemoveComponent enqueues detaching typ from id.
func (cb *CommandBuffer) RemoveComponent(id, typ Id) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.commands = append(cb.commands, cbCommand{kind: cbDetachComponent, arg0: id, arg1: typ})
}

// applyCommandBuffers runs every non-empty buffer's pending commands, in
// buffer order then FIFO order within each buffer, and discards each
// buffer afterwards — the work done at every BARRIER.
func (ecs *ECS) applyCommandBuffers() {
	if ecs.buffers == nil {
		return
	}
	var toDiscard []Id
	ecs.buffers.each(func(id Id, cb *CommandBuffer) {
		cb.mu.Lock()
		empty := len(cb.commands) == 0
		cb.mu.Unlock()
		if empty {
			return
		}
		cb.apply()
		toDiscard = append(toDiscard, id)
	})
	for _, id := range toDiscard {
		ecs.buffers.delete(id)
	}
}

// apply replays cb's FIFO against its ECS, maintaining a placeholder->real
// entity mapping for the duration of the call. Commands whose resolved
// entity or component type no longer exists are dropped silently.
func (cb *CommandBuffer) apply() {
	cb.mu.Lock()
	commands := cb.commands
	cb.commands = nil
	cb.mu.Unlock()

	placeholders := newHashmap[Id](len(commands))
	resolve := func(arg Id) Id {
		if real := placeholders.get(arg); real != nil {
			return *real
		}
		return arg
	}

	for _, c := range commands {
		switch c.kind {
		case cbCreateEntity:
			real := cb.ecs.NewEntity(nil)
			placeholders.insert(c.arg0, real)
		case cbDeleteEntity:
			entity := resolve(c.arg0)
			if cb.ecs.EntityExists(entity) {
				cb.ecs.DeleteEntity(entity)
			}
		case cbAttachComponent:
			entity := resolve(c.arg0)
			if cb.ecs.EntityExists(entity) && cb.ecs.components.get(c.arg1) != nil {
				cb.ecs.AddComponent(entity, c.arg1)
			}
		case cbDetachComponent:
			entity := resolve(c.arg0)
			if cb.ecs.EntityExists(entity) && cb.ecs.components.get(c.arg1) != nil {
				cb.ecs.DeleteComponent(entity, c.arg1)
			}
		}
	}
}
