// Package ecs implements a data-oriented, archetype-free Entity Component
// System dispatch engine: typed columns of component data keyed by
// entity id, a scheduler that linearises registered systems into a plan
// of parallel and barrier-separated work, and a worker pool that executes
// that plan with deferred, command-buffered structural mutation.
package ecs

import "github.com/cespare/xxhash/v2"

// Id is the ECS's single identifier type: entity ids, component type ids,
// system name hashes, archetype name hashes, and command-buffer ids all
// live in this space. Zero is reserved to mean "none" everywhere it
// appears.
type Id uint32

// NoId is the reserved "none" value: no entity, no component, no system.
const NoId Id = 0

// HashName derives a deterministic Id from the bytes of name. Equal
// strings always hash to the same Id, across runs and across builds.
//
// Truncating a 64-bit xxhash digest to its low 32 bits is a standard way
// to get a fast, well-distributed 32-bit hash without reimplementing a
// dedicated 32-bit variant.
func HashName(name string) Id {
	return Id(uint32(xxhash.Sum64String(name)))
}
