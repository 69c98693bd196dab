package ecs

import (
	"reflect"
	"unsafe"
)

// This file is the Go-native stand-in for a stringly-typed registration
// façade (the macro-generated thunks that wrap user component structs and
// update functions in the C original this engine descends from). Go has
// no preprocessor, so the façade shrinks to a thin layer of generic
// helpers with no behavior of their own — every contract they rely on
// lives in component.go/system.go.

type componentOptions struct {
	storage StorageMode
	ctor    func(unsafe.Pointer)
	dtor    func(unsafe.Pointer)
}

// ComponentOption configures RegisterComponentType.
type ComponentOption func(*componentOptions)

// WithStorage overrides the default StorageDense mode.
func WithStorage(mode StorageMode) ComponentOption {
	return func(o *componentOptions) { o.storage = mode }
}

// WithCtor registers a constructor, invoked once per newly-created slot.
func WithCtor(fn func(unsafe.Pointer)) ComponentOption {
	return func(o *componentOptions) { o.ctor = fn }
}

// WithDtor registers a destructor, invoked once per detached slot.
func WithDtor(fn func(unsafe.Pointer)) ComponentOption {
	return func(o *componentOptions) { o.dtor = fn }
}

// ComponentTypeName derives the registration name RegisterComponentType
// would use for T: its bare (unqualified) type name.
func ComponentTypeName[T any]() string {
	return reflect.TypeFor[T]().Name()
}

// RegisterComponentType registers T as a component type, deriving its
// name from T's type name and its size from unsafe.Sizeof. Returns the
// registered Id (NoId if registration failed, e.g. a duplicate name).
func RegisterComponentType[T any](ecs *ECS, opts ...ComponentOption) Id {
	var zero T
	cfg := componentOptions{storage: StorageDense}
	for _, opt := range opts {
		opt(&cfg)
	}
	name := ComponentTypeName[T]()
	size := int(unsafe.Sizeof(zero))
	ok := ecs.RegisterComponent(ComponentRegistration{
		Name:    name,
		Size:    size,
		Storage: cfg.storage,
		Ctor:    cfg.ctor,
		Dtor:    cfg.dtor,
	})
	if !ok {
		return NoId
	}
	return HashName(name)
}

// SystemOption configures System.
type SystemOption func(*SystemRegistration)

// After declares names as dependencies this system must follow, behind a
// drained barrier, within a tick.
func After(names ...string) SystemOption {
	return func(r *SystemRegistration) { r.After = append(r.After, names...) }
}

// ThreadSafe marks the system as safe to run concurrently with other
// thread-safe, non-conflicting systems. It is combined with
// UpdatesOtherEntities/CreatesOrDeletes to derive the stored flag — see
// SystemRegistration.
func ThreadSafe() SystemOption {
	return func(r *SystemRegistration) { r.ThreadSafe = true }
}

// UpdatesOtherEntities marks the system as mutating entities beyond the
// one it is currently updating, which forces it onto the caller's thread.
func UpdatesOtherEntities() SystemOption {
	return func(r *SystemRegistration) { r.UpdatesOtherEntities = true }
}

// CreatesOrDeletes marks the system as creating or deleting entities
// directly (as opposed to via a command buffer), which also forces it
// onto the caller's thread.
func CreatesOrDeletes() SystemOption {
	return func(r *SystemRegistration) { r.CreatesOrDeletes = true }
}

// WithEvent attaches an event callback.
func WithEvent(fn EventFunc) SystemOption {
	return func(r *SystemRegistration) { r.Event = fn }
}

// WithUserData attaches opaque user data, passed through to Update/Event.
func WithUserData(data any) SystemOption {
	return func(r *SystemRegistration) { r.UserData = data }
}

// System builds a SystemRegistration for name, running update over
// archetype's entities. archetype may be nil for a system that runs once
// per tick with no entity.
func System(name string, archetype *Archetype, update UpdateFunc, opts ...SystemOption) SystemRegistration {
	reg := SystemRegistration{
		Name:      name,
		Archetype: archetype,
		Update:    update,
	}
	for _, opt := range opts {
		opt(&reg)
	}
	return reg
}
