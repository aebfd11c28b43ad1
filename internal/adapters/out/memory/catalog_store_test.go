package memory_test

import (
	"sync"
	"testing"

	"shipcalc/internal/adapters/out/memory"
	"shipcalc/internal/core/domain/model/catalog"
	"shipcalc/internal/core/domain/model/catalog/catalogtest"
	"shipcalc/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogStore_NotLoaded(t *testing.T) {
	store := memory.NewCatalogStore()

	reader, err := store.Current()
	require.ErrorIs(t, err, errs.ErrCatalogNotLoaded)
	assert.Nil(t, reader)
	assert.True(t, errs.IsRetryable(err))
}

func TestCatalogStore_Replace(t *testing.T) {
	store := memory.NewCatalogStore()
	first := catalogtest.Snapshot(t)
	second := catalogtest.Snapshot(t)

	store.Replace(first)
	reader, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, first, reader)

	store.Replace(nil)
	assert.Same(t, first, store.Snapshot())

	store.Replace(second)
	assert.Same(t, second, store.Snapshot())
}

func TestCatalogStore_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	store := memory.NewCatalogStore()
	snapshots := []*catalog.Snapshot{catalogtest.Snapshot(t), catalogtest.Snapshot(t)}
	store.Replace(snapshots[0])

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				reader, err := store.Current()
				if !assert.NoError(t, err) {
					return
				}
				assert.Len(t, reader.Carriers(), 3)
			}
		}()
		store.Replace(snapshots[i%2])
	}
	wg.Wait()
}
