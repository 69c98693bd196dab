package ecs

// sparseArray is a direct-indexed, Id-keyed array: entries[idx] holds a
// pool-backed, stable-address slot or nil. It tracks firstFree (the
// smallest unused index) and lastFilled (one past the highest used
// index) so that next/nextFree are amortised O(1) even though resizing
// the entries slice itself can relocate — the *values* it points at
// never move, because they live in the backing pool.
//
// This is what every system's entity queue, the entity metadata table,
// and the command-buffer table are built from. Queues and the entity
// table are keyed by entity id, and entity ids are allocated densely
// starting at 1, which is exactly the access pattern a direct-indexed
// array is good at. Component columns use the separate column type
// (component.go), which has the same direct-indexed layout.
type sparseArray[T any] struct {
	entries    []*T
	storage    *pool[T]
	firstFree  Id
	lastFilled Id
	count      int
}

// newSparseArray preallocates room for at least minCapacity entries. If
// reserveZero is true, index 0 is permanently excluded from firstFree —
// used for the entity table and command-buffer table, where Id(0) must
// never be issued.
func newSparseArray[T any](minCapacity, chunkSize int, reserveZero bool) *sparseArray[T] {
	if minCapacity < 1 {
		minCapacity = 1
	}
	s := &sparseArray[T]{
		entries: make([]*T, minCapacity),
		storage: newPool[T](chunkSize),
	}
	if reserveZero {
		s.firstFree = 1
	}
	return s
}

func (s *sparseArray[T]) growTo(n int) {
	if n <= len(s.entries) {
		return
	}
	next := make([]*T, n)
	copy(next, s.entries)
	s.entries = next
}

// insert places data (or a zero value, if data is nil) at idx, allocating
// a pool slot if idx was previously empty. Returns the stable pointer.
func (s *sparseArray[T]) insert(idx Id, data *T) *T {
	if int(idx) >= len(s.entries) {
		s.growTo(int(idx) + 1)
	}
	entry := s.entries[idx]
	if entry == nil {
		entry = s.storage.alloc()
		s.entries[idx] = entry
		s.count++
	}
	if idx >= s.lastFilled {
		s.lastFilled = idx + 1
	}
	if idx == s.firstFree {
		s.firstFree = s.nextFree(s.firstFree)
	}
	if data != nil {
		*entry = *data
	}
	return entry
}

// insertFree inserts at the first free index and returns that index
// along with the stable pointer.
func (s *sparseArray[T]) insertFree(data *T) (Id, *T) {
	idx := s.computeFirstFree()
	return idx, s.insert(idx, data)
}

// computeFirstFree returns (and caches) the first unused index.
func (s *sparseArray[T]) computeFirstFree() Id {
	idx := s.firstFree
	if int(idx) >= len(s.entries) {
		return s.firstFree
	}
	if s.entries[idx] != nil {
		idx = s.nextFree(idx)
		s.firstFree = idx
	}
	return idx
}

// get returns the entry at idx, or nil if absent or out of range.
func (s *sparseArray[T]) get(idx Id) *T {
	if int(idx) < len(s.entries) {
		return s.entries[idx]
	}
	return nil
}

// next returns the smallest occupied index strictly greater than idx, or
// an index at or beyond lastFilled if none remain (callers compare against
// lastFilled, matching the half-open range convention used throughout
// this package).
func (s *sparseArray[T]) next(idx Id) Id {
	idx++
	for idx < s.lastFilled && s.entries[idx] == nil {
		idx++
	}
	return idx
}

// nextFree returns the smallest unused index strictly greater than idx.
func (s *sparseArray[T]) nextFree(idx Id) Id {
	idx++
	for int(idx) < len(s.entries) && s.entries[idx] != nil {
		idx++
	}
	return idx
}

// delete removes the entry at idx, releasing its pool slot.
func (s *sparseArray[T]) delete(idx Id) {
	if int(idx) >= len(s.entries) || s.entries[idx] == nil {
		return
	}
	s.storage.release(s.entries[idx])
	s.entries[idx] = nil
	s.count--
	if idx < s.firstFree {
		s.firstFree = idx
	}
	for s.lastFilled > 0 && s.entries[s.lastFilled-1] == nil {
		s.lastFilled--
	}
}

// len returns the number of occupied slots.
func (s *sparseArray[T]) len() int {
	return s.count
}

// each calls fn for every occupied slot in increasing index order.
// Index 0 is never visited: by convention (matching Id's reserved "none"
// value) slot 0 of a sparseArray is never populated.
func (s *sparseArray[T]) each(fn func(idx Id, value *T)) {
	for i := s.next(0); i < s.lastFilled; i = s.next(i) {
		fn(i, s.entries[i])
	}
}
