package addb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultNodeSelector(t *testing.T) {
	t.Run("consistency", func(t *testing.T) {
		first := DefaultNodeSelector("D:{100:1:2}", 10)
		for range 5 {
			require.Equal(t, first, DefaultNodeSelector("D:{100:1:2}", 10))
		}
	})

	t.Run("bounds", func(t *testing.T) {
		keys := []string{"D:{1}", "M:{100:1:2}", "*", "a-much-longer-data-key-with-many-characters"}
		for _, key := range keys {
			for _, count := range []int{1, 2, 5, 10, 100} {
				idx := DefaultNodeSelector(key, count)
				require.True(t, idx >= 0 && idx < count, "key=%s count=%d idx=%d", key, count, idx)
			}
		}
	})

	t.Run("distribution", func(t *testing.T) {
		distribution := make(map[int]int)
		for i := range 200 {
			distribution[DefaultNodeSelector(fmt.Sprintf("D:{%d}", i), 10)]++
		}
		require.Greater(t, len(distribution), 5)
	})
}

func TestFirstNodeSelector(t *testing.T) {
	require.Equal(t, 0, FirstNodeSelector("anything", 3))
}
