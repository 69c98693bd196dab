package ecs

// hashset is a hashmap specialised to zero-size values. Used for system
// dependency sets (after_systems).
type hashset struct {
	m *hashmap[struct{}]
}

func newHashset(minCapacity int) hashset {
	return hashset{m: newHashmap[struct{}](minCapacity)}
}

func (s *hashset) add(id Id) {
	s.m.insert(id, struct{}{})
}

func (s *hashset) has(id Id) bool {
	return s.m.has(id)
}

func (s *hashset) remove(id Id) {
	s.m.delete(id)
}

func (s *hashset) len() int {
	return s.m.len()
}

func (s *hashset) each(fn func(id Id)) {
	s.m.each(func(key Id, _ *struct{}) { fn(key) })
}
