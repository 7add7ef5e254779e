// SPDX-License-Identifier: MIT
// Package structure_test verifies thread-safety of Graph under concurrent operations.

package structure_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cmunell/micro-util-sub002/structure"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAdd ensures concurrent adds to distinct slots all land.
func TestConcurrentAdd(t *testing.T) {
	g := structure.NewGraph()
	const num = 200
	var wg sync.WaitGroup
	wg.Add(num)

	errs := make(chan error, num)
	for i := 0; i < num; i++ {
		go func(id int) {
			defer wg.Done()
			_, err := g.Add(edge(TypeX, "hub", fmt.Sprintf("n%d", id)), float64(id), nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, num, g.ItemCount())
	require.Len(t, g.Neighbors("hub"), num)
}

// TestConcurrentContest mixes competing adds on one slot with readers; the
// slot must end with exactly one occupant holding the maximum weight.
func TestConcurrentContest(t *testing.T) {
	g := structure.NewGraph()
	const rounds = 100
	var wg sync.WaitGroup
	wg.Add(2 * rounds)

	for i := 0; i < rounds; i++ {
		go func(id int) {
			defer wg.Done()
			_, _ = g.Add(edge(fmt.Sprintf("T%d", id), NodeA, NodeB), float64(id), nil)
		}(i)
		go func() {
			defer wg.Done()
			_ = g.Entries()
			_ = g.EdgePaths(1)
		}()
	}
	wg.Wait()

	entries := g.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, float64(rounds-1), entries[0].Weight)
}
