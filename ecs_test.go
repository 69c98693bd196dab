package ecs

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// Scenario S1: registering a component under an already-used name fails,
// and leaves the original registration intact.
func TestScenarioRegistrationDuplicateRejected(t *testing.T) {
	e := New()
	require.True(t, e.RegisterComponent(ComponentRegistration{Name: "Position", Size: 8}))
	require.False(t, e.RegisterComponent(ComponentRegistration{Name: "Position", Size: 8}))
	require.True(t, e.HasComponent("Position"))
}

// Scenario S2: an entity's system-queue membership stays coherent across
// its lifecycle: absent before matching, present once it matches, gone
// once deleted.
func TestScenarioEntityLifecycleQueueCoherence(t *testing.T) {
	e := New()
	posID := RegisterComponentType[testPosition](e)
	arch, _ := e.RegisterArchetype("Pos", []string{"testPosition"})

	var seenCount int
	e.RegisterSystem(System("Count", arch, func(Id, []unsafe.Pointer, any) {
		seenCount++
	}, ThreadSafe()))

	entity := e.NewEntity(nil)
	e.Update()
	require.Equal(t, 0, seenCount, "entity without the required component must not be visited")

	e.AddComponent(entity, posID)
	e.Update()
	require.Equal(t, 1, seenCount)

	e.DeleteEntity(entity)
	e.Update()
	require.Equal(t, 1, seenCount, "deleted entity must not be visited again")
}

// Scenario S3 (end-to-end): a command buffer filled by a thread-safe
// system's update applies at the following barrier, not mid-tick.
func TestScenarioCommandBufferAppliesAtBarrier(t *testing.T) {
	e := New()
	posID := RegisterComponentType[testPosition](e)
	arch, _ := e.RegisterArchetype("Pos", []string{"testPosition"})

	cb := e.NewCommandBuffer()
	var spawned Id
	e.RegisterSystem(System("Spawner", arch, func(Id, []unsafe.Pointer, any) {
		spawned = cb.CreateEntity()
	}, ThreadSafe()))
	// A second, conflicting system forces a barrier after Spawner runs.
	e.RegisterSystem(System("Spawner2", arch, func(Id, []unsafe.Pointer, any) {}, ThreadSafe()))

	e.NewEntity(arch)

	countBefore := 0
	e.entities.each(func(Id, *entityRecord) { countBefore++ })

	e.Update()

	countAfter := 0
	e.entities.each(func(Id, *entityRecord) { countAfter++ })

	require.NotEqual(t, NoId, spawned)
	require.Equal(t, countBefore+1, countAfter, "the command buffer's CreateEntity must have applied by the end of Update")
}

func TestDeleteTearsDownWorkersAndRunsDestructors(t *testing.T) {
	e := New()
	var dtorCalls int
	e.RegisterComponent(ComponentRegistration{
		Name: "Position", Size: 8,
		Dtor: func(unsafe.Pointer) { dtorCalls++ },
	})
	id := HashName("Position")
	entity := e.NewEntity(nil)
	e.AddComponent(entity, id)

	e.SetThreads(2)
	e.Delete()

	require.Equal(t, 1, dtorCalls)
}

func TestArchetypeRegistrationRejectsUnknownComponent(t *testing.T) {
	e := New()
	_, ok := e.RegisterArchetype("Bad", []string{"DoesNotExist"})
	require.False(t, ok)
}

func TestArchetypeRegistrationRejectsDuplicateName(t *testing.T) {
	e := New()
	RegisterComponentType[testPosition](e)
	_, ok := e.RegisterArchetype("Pos", []string{"testPosition"})
	require.True(t, ok)
	_, ok = e.RegisterArchetype("Pos", []string{"testPosition"})
	require.False(t, ok)
}
