package ecs

import (
	"context"
	"sync"
	"unsafe"

	"golang.org/x/sync/errgroup"
)

const (
	defaultEntityChunk = 256
	defaultColumnChunk = 256
)

// ecsOptions holds New's sizing hints — all purely advisory preallocation
// capacities with no semantic effect on behavior.
type ecsOptions struct {
	components     int
	entities       int
	systems        int
	componentTypes int
	systemEntities int
}

// Option configures New. Every option is a sizing hint only.
type Option func(*ecsOptions)

// WithComponents records a hint for the number of component types that
// will be registered. New sizes no structure from it; the component-type
// registry is sized by WithComponentTypes.
func WithComponents(n int) Option { return func(o *ecsOptions) { o.components = n } }

// WithEntities hints at the number of concurrently-live entities.
func WithEntities(n int) Option { return func(o *ecsOptions) { o.entities = n } }

// WithSystems hints at the number of systems that will be registered.
func WithSystems(n int) Option { return func(o *ecsOptions) { o.systems = n } }

// WithComponentTypes hints at the component-type registry's initial
// capacity.
func WithComponentTypes(n int) Option { return func(o *ecsOptions) { o.componentTypes = n } }

// WithSystemEntities hints at each system's initial entity-queue
// capacity.
func WithSystemEntities(n int) Option { return func(o *ecsOptions) { o.systemEntities = n } }

// ECS is the dispatch engine: it owns every component column, entity
// slot, system record, worker thread, and command buffer (ownership
// graph). All state is reached through a single *ECS, explicitly
// threaded through every call — there is no package-level global state.
type ECS struct {
	entities    *sparseArray[entityRecord]
	components  *componentRegistry
	archetypes  map[Id]*Archetype
	systems     *hashmap[*system]
	systemOrder []*system

	plan      []planItem
	planDirty bool

	buffers *sparseArray[CommandBuffer]

	workers      []*worker
	workersMu    sync.Mutex
	workersCond  *sync.Cond
	readyThreads int
	group        *errgroup.Group
	groupCtx     context.Context
	groupCancel  context.CancelFunc

	// inlineScratch is the component-pointer scratch buffer used when
	// QUEUED/ON_THREAD items run on the caller's own goroutine — either
	// because no workers exist, or (ON_THREAD) by design.
	inlineScratch []unsafe.Pointer

	systemEntitiesHint int
}

// New constructs an ECS. Sizing hints passed via opts only affect initial
// preallocation; every structure still grows on demand.
func New(opts ...Option) *ECS {
	o := ecsOptions{
		components:     16,
		entities:       defaultEntityChunk,
		systems:        16,
		componentTypes: 16,
		systemEntities: 8,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	ecs := &ECS{
		entities:           newSparseArray[entityRecord](o.entities, defaultEntityChunk, true),
		components:         newComponentRegistry(o.componentTypes, defaultColumnChunk),
		systems:            newHashmap[*system](o.systems),
		planDirty:          true,
		group:              group,
		groupCtx:           gctx,
		groupCancel:        cancel,
		systemEntitiesHint: o.systemEntities,
	}
	ecs.workersCond = sync.NewCond(&ecs.workersMu)
	return ecs
}

// Delete tears the ECS down: workers are stopped (in-flight updates
// finish their current entity), then every remaining entity is
// deleted so component destructors run.
func (ecs *ECS) Delete() {
	ecs.stopWorkers()

	var ids []Id
	ecs.entities.each(func(id Id, _ *entityRecord) {
		ids = append(ids, id)
	})
	for _, id := range ids {
		ecs.DeleteEntity(id)
	}
}

// RegisterComponent installs reg into the component-type registry.
func (ecs *ECS) RegisterComponent(reg ComponentRegistration) bool {
	_, ok := ecs.components.register(reg)
	return ok
}

// HasComponent reports whether a component type named name is registered.
func (ecs *ECS) HasComponent(name string) bool {
	return ecs.components.has(name)
}

// ComponentToString renders a component type id for debugging.
func (ecs *ECS) ComponentToString(id Id) string {
	return ecs.components.toString(id)
}

func (ecs *ECS) workerCount() int {
	return len(ecs.workers)
}

// Update runs one tick: rebuilds the dispatch plan if dirty,
// walks it executing QUEUED/ON_THREAD/BARRIER items, drains every
// system's event queue, and synchronises one final time.
func (ecs *ECS) Update() {
	if ecs.planDirty {
		ecs.arrange()
	}

	hasWorkers := len(ecs.workers) > 0

	for _, item := range ecs.plan {
		switch item.kind {
		case planQueued:
			if hasWorkers {
				w := ecs.awaitReadyWorker()
				w.assign(item)
			} else {
				ecs.runPlanItem(&ecs.inlineScratch, item)
			}
		case planOnThread:
			if hasWorkers {
				ecs.awaitAllReady()
			}
			ecs.runPlanItem(&ecs.inlineScratch, item)
		case planBarrier:
			if hasWorkers {
				ecs.awaitAllReady()
			}
			ecs.applyCommandBuffers()
		}
	}

	for _, s := range ecs.systemOrder {
		sys := s
		sys.events.drain(func(ev any) {
			if sys.event != nil {
				sys.event(ev, sys.userdata)
			}
		})
	}

	if hasWorkers {
		ecs.awaitAllReady()
	}
}
