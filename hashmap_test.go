package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashmapInsertGetDelete(t *testing.T) {
	m := newHashmap[string](4)
	m.insert(Id(10), "ten")
	m.insert(Id(20), "twenty")

	require.Equal(t, "ten", *m.get(Id(10)))
	require.True(t, m.has(Id(20)))

	m.delete(Id(10))
	require.Nil(t, m.get(Id(10)))
	require.False(t, m.has(Id(10)))
	require.Equal(t, 1, m.len())
}

func TestHashmapOverwrite(t *testing.T) {
	m := newHashmap[int](4)
	m.insert(Id(1), 1)
	m.insert(Id(1), 2)
	require.Equal(t, 1, m.len())
	require.Equal(t, 2, *m.get(Id(1)))
}

// Resize must preserve every live entry and keep load factor bounded.
func TestHashmapGrowsAndPreservesEntries(t *testing.T) {
	m := newHashmap[int](4)
	const n = 500
	for i := 1; i <= n; i++ {
		m.insert(Id(i), i)
	}
	require.Equal(t, n, m.len())
	require.LessOrEqual(t, m.loadFactor(), 0.8)
	for i := 1; i <= n; i++ {
		v := m.get(Id(i))
		require.NotNil(t, v)
		require.Equal(t, i, *v)
	}
}

func TestHashmapNextSkipsTombstonesAndOrdersByKey(t *testing.T) {
	m := newHashmap[int](8)
	for _, id := range []Id{1, 3, 5, 7} {
		m.insert(id, int(id))
	}
	m.delete(Id(3))

	require.Equal(t, Id(1), m.next(Id(0)))
	require.Equal(t, Id(5), m.next(Id(1)))
	require.Equal(t, Id(7), m.next(Id(5)))
}

func TestHashsetBasics(t *testing.T) {
	s := newHashset(4)
	s.add(Id(7))
	s.add(Id(9))
	require.True(t, s.has(Id(7)))
	require.False(t, s.has(Id(8)))
	s.remove(Id(7))
	require.False(t, s.has(Id(7)))
	require.Equal(t, 1, s.len())
}
