package cache

import (
	"fmt"
	"sync"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/sanasto/pkg/sanasto/compound"
	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
)

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := New(size)
		require.ErrorIs(t, err, internalerr.ErrInvalidConfig)
	}
}

func TestShardCount(t *testing.T) {
	tests := []struct {
		size   int
		shards int
	}{
		{1, 1},
		{511, 1},
		{512, 2},
		{1024, 4},
		{1 << 20, 16},
	}
	for _, tt := range tests {
		c, err := New(tt.size)
		require.NoError(t, err)
		require.Len(t, c.shards, tt.shards, "size %d", tt.size)
	}
}

func TestShardIsStablePerKey(t *testing.T) {
	c, err := New(1 << 20)
	require.NoError(t, err)

	used := map[*lru.Cache[string, []compound.Token]]bool{}
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("sana%d", i)
		shard := c.shard(key)
		require.Same(t, shard, c.shard(key), key)
		used[shard] = true
	}
	require.Greater(t, len(used), 1)
}

func TestGetPut(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	_, ok := c.Get("saha")
	require.False(t, ok)

	want := []compound.Token{{Text: "saha", Position: 1, PositionLength: 1}}
	c.Put("saha", want)
	got, ok := c.Get("saha")
	require.True(t, ok)
	require.Equal(t, want, got)

	st := c.Stats()
	require.Equal(t, int64(1), st.Hits)
	require.Equal(t, int64(1), st.Misses)
	require.Equal(t, 1, st.Size)
}

func TestEmptyResultIsCached(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	c.Put("totalgibberish", nil)
	got, ok := c.Get("totalgibberish")
	require.True(t, ok)
	require.Empty(t, got)
}

func TestCapacityOneEvicts(t *testing.T) {
	c, err := New(1)
	require.NoError(t, err)

	c.Put("moottorisaha", []compound.Token{{Text: "moottorisaha", Position: 1}})
	c.Put("taidemaalaus", []compound.Token{{Text: "taidemaalaus", Position: 1}})

	_, ok := c.Get("moottorisaha")
	require.False(t, ok)
	_, ok = c.Get("taidemaalaus")
	require.True(t, ok)
	require.Equal(t, int64(1), c.Stats().Evictions)
	require.Equal(t, 1, c.Len())
}

func TestLeastRecentlyUsedIsEvicted(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Put("a1", nil)
	c.Put("b2", nil)
	_, _ = c.Get("a1")
	c.Put("c3", nil)

	_, ok := c.Get("a1")
	require.True(t, ok)
	_, ok = c.Get("b2")
	require.False(t, ok)
}

func TestPurge(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)
	c.Put("x1", nil)
	c.Put("x2", nil)
	c.Purge()
	require.Equal(t, 0, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c, err := New(1024)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("sana%d", (i+w)%300)
				if _, ok := c.Get(key); !ok {
					c.Put(key, []compound.Token{{Text: key, Position: 1}})
				}
			}
		}(w)
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 1024)
	st := c.Stats()
	require.Equal(t, int64(8*500), st.Hits+st.Misses)
}
