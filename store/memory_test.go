package store

import (
	"context"
	"sync"
	"testing"

	"hotel-pms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	c, err := st.Criteria(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	require.NoError(t, st.SaveCriteria(ctx, models.RoomFilterCriteria{CheckIn: "2025-05-01", CheckOut: "2025-05-03", Adults: 2, Timestamp: 10}))
	c, err = st.Criteria(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 2, c.Adults)

	// returned values are copies
	c.Adults = 9
	again, _ := st.Criteria(ctx)
	assert.Equal(t, 2, again.Adults)

	saved, err := st.SaveSelection(ctx, models.GuestSelection{RoomID: 3, Timestamp: 11})
	require.NoError(t, err)
	assert.Equal(t, int64(11), saved.Timestamp)
	sel, err := st.Selection(ctx)
	require.NoError(t, err)
	require.NotNil(t, sel)
	assert.Equal(t, uint(3), sel.RoomID)

	require.NoError(t, st.ClearSelection(ctx))
	sel, err = st.Selection(ctx)
	require.NoError(t, err)
	assert.Nil(t, sel)
	assert.NoError(t, st.Close())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = st.SaveSelection(ctx, models.GuestSelection{RoomID: uint(i + 1), Timestamp: int64(i)})
			_, _ = st.Selection(ctx)
		}(i)
	}
	wg.Wait()

	sel, err := st.Selection(ctx)
	require.NoError(t, err)
	assert.NotNil(t, sel)
}

func TestMemoryStore_SelectionTimestampsNeverRepeat(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	const n = 50
	stamps := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			saved, err := st.SaveSelection(ctx, models.GuestSelection{RoomID: uint(i + 1), Timestamp: 1000})
			if assert.NoError(t, err) {
				stamps <- saved.Timestamp
			}
		}(i)
	}
	wg.Wait()
	close(stamps)

	seen := make(map[int64]bool, n)
	for ts := range stamps {
		assert.False(t, seen[ts], "timestamp %d handed out twice", ts)
		seen[ts] = true
	}
	assert.Len(t, seen, n)

	latest, err := st.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000+n-1), latest.Timestamp)
}
