package ecs

import "unsafe"

// StorageMode selects how a component type's instances are kept. It is
// informative for flyweight/tag beyond their contract below — none of
// the three modes changes the dispatch core's behaviour.
type StorageMode int

const (
	// StorageDense stores one instance per owning entity (the default).
	StorageDense StorageMode = iota
	// StorageFlyweight stores a shared instance referenced by many
	// entities. The contract is identical to Dense; only the allocator
	// choice differs in a from-scratch implementation. Here it behaves
	// exactly like Dense — the distinction is recorded but not load-bearing.
	StorageFlyweight
	// StorageTag stores zero bytes; Ctor/Dtor are never invoked.
	StorageTag
)

// ComponentRegistration describes a component type to register.
type ComponentRegistration struct {
	Name    string
	Size    int
	Storage StorageMode
	Ctor    func(unsafe.Pointer)
	Dtor    func(unsafe.Pointer)
}

// componentType is a registered component schema: name, stable id, byte
// size, optional ctor/dtor, storage mode, and its column.
type componentType struct {
	name    string
	id      Id
	slot    uint16 // compact index into a componentMask
	size    int
	storage StorageMode
	ctor    func(unsafe.Pointer)
	dtor    func(unsafe.Pointer)
	col     *column
}

// column is an Id(entity)->bytes mapping with the same stable-address
// contract as sparseArray (it has no traversal method), specialised to runtime-sized
// byte blobs (a component's size is only known at registration, so it
// can't be a sparseArray[T] for a compile-time T).
type column struct {
	entries    []unsafe.Pointer
	storage    *bytePool
	firstFree  Id
	lastFilled Id
	count      int
}

func newColumn(size, chunkSlots int) *column {
	return &column{
		entries: make([]unsafe.Pointer, 8),
		storage: newBytePool(size, chunkSlots),
	}
}

func (c *column) growTo(n int) {
	if n <= len(c.entries) {
		return
	}
	next := make([]unsafe.Pointer, n)
	copy(next, c.entries)
	c.entries = next
}

func (c *column) nextFree(idx Id) Id {
	idx++
	for int(idx) < len(c.entries) && c.entries[idx] != nil {
		idx++
	}
	return idx
}

// create zero-initialises (and, via caller, constructs) the slot for
// entity, allocating it if not already present. Returns the stable
// pointer and whether a new slot was created (false if entity already
// had this component).
func (c *column) create(entity Id) (ptr unsafe.Pointer, created bool) {
	if int(entity) >= len(c.entries) {
		c.growTo(int(entity) + 1)
	}
	if existing := c.entries[entity]; existing != nil {
		return existing, false
	}
	ptr = c.storage.alloc()
	c.entries[entity] = ptr
	c.count++
	if entity >= c.lastFilled {
		c.lastFilled = entity + 1
	}
	if entity == c.firstFree {
		c.firstFree = c.nextFree(c.firstFree)
	}
	return ptr, true
}

func (c *column) get(entity Id) unsafe.Pointer {
	if int(entity) < len(c.entries) {
		return c.entries[entity]
	}
	return nil
}

func (c *column) delete(entity Id) unsafe.Pointer {
	if int(entity) >= len(c.entries) {
		return nil
	}
	ptr := c.entries[entity]
	if ptr == nil {
		return nil
	}
	c.storage.release(ptr)
	c.entries[entity] = nil
	c.count--
	if entity < c.firstFree {
		c.firstFree = entity
	}
	if entity == c.lastFilled-1 {
		c.lastFilled--
	}
	return ptr
}

// componentRegistry holds every registered component type, keyed by the
// hash of its name, plus the compact-slot counter used for masks.
type componentRegistry struct {
	byId         *hashmap[*componentType]
	ordered      []*componentType // registration order, for iteration/teardown
	nextSlot     uint16
	defaultChunk int
}

func newComponentRegistry(initialTypes, chunk int) *componentRegistry {
	return &componentRegistry{
		byId:         newHashmap[*componentType](initialTypes),
		defaultChunk: chunk,
	}
}

// register validates and installs reg, returning the type's Id and
// whether registration succeeded. Fails (false) on an empty name, a
// non-positive size for a non-tag storage mode, a duplicate name, or
// exhaustion of the compact slot space.
func (r *componentRegistry) register(reg ComponentRegistration) (Id, bool) {
	if reg.Name == "" {
		logDegrade(newDispatchError(BadArgument, "component registration requires a non-empty name"))
		return NoId, false
	}
	if reg.Storage != StorageTag && reg.Size <= 0 {
		logDegrade(newDispatchError(BadArgument, "component %q needs a positive size (got %d)", reg.Name, reg.Size))
		return NoId, false
	}
	size := reg.Size
	if reg.Storage == StorageTag {
		size = 0
	}

	id := HashName(reg.Name)
	if r.byId.has(id) {
		logDegrade(newDispatchError(DuplicateRegistration, "component %q already registered", reg.Name))
		return NoId, false
	}
	if int(r.nextSlot) >= maxComponentTypes {
		logDegrade(newDispatchError(OutOfMemory, "component %q exceeds the maximum of %d registered types", reg.Name, maxComponentTypes))
		return NoId, false
	}

	ct := &componentType{
		name:    reg.Name,
		id:      id,
		slot:    r.nextSlot,
		size:    size,
		storage: reg.Storage,
		ctor:    reg.Ctor,
		dtor:    reg.Dtor,
		col:     newColumn(size, r.defaultChunk),
	}
	r.byId.insert(id, ct)
	r.ordered = append(r.ordered, ct)
	r.nextSlot++
	return id, true
}

func (r *componentRegistry) get(id Id) *componentType {
	ptr := r.byId.get(id)
	if ptr == nil {
		return nil
	}
	return *ptr
}

func (r *componentRegistry) has(name string) bool {
	return r.byId.has(HashName(name))
}

// create inserts a zeroed entry for entity in typ's column, invoking the
// constructor (if any and if the type isn't tag-only). Fails if typ is
// unregistered.
func (r *componentRegistry) create(typ, entity Id) (unsafe.Pointer, bool) {
	ct := r.get(typ)
	if ct == nil {
		logDegrade(newDispatchError(UnknownType, "component type %d is not registered", typ))
		return nil, false
	}
	ptr, created := ct.col.create(entity)
	if created && ct.storage != StorageTag && ct.ctor != nil {
		ct.ctor(ptr)
	}
	return ptr, true
}

func (r *componentRegistry) getComponent(typ, entity Id) unsafe.Pointer {
	ct := r.get(typ)
	if ct == nil {
		return nil
	}
	return ct.col.get(entity)
}

// deleteComponent invokes typ's destructor (if any) then removes entity
// from typ's column. A no-op if typ is unregistered or entity lacks it.
func (r *componentRegistry) deleteComponent(typ, entity Id) {
	ct := r.get(typ)
	if ct == nil {
		return
	}
	if ct.storage != StorageTag && ct.dtor != nil {
		if ptr := ct.col.get(entity); ptr != nil {
			ct.dtor(ptr)
		}
	}
	ct.col.delete(entity)
}

// toString renders a component type id as "Name#hexid", for debugging.
func (r *componentRegistry) toString(id Id) string {
	ct := r.get(id)
	if ct == nil {
		return "<unknown component>"
	}
	return ct.name + "#" + hex32(uint32(id))
}

const hexDigits = "0123456789abcdef"

func hex32(v uint32) string {
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf)
}
