package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat64Slice(t *testing.T) {
	t.Run("returns zeroed slice with correct size", func(t *testing.T) {
		slice, cleanup := GetFloat64Slice(8)
		for i := range slice {
			slice[i] = float64(i) + 0.5
		}
		cleanup()

		again, cleanup2 := GetFloat64Slice(8)
		defer cleanup2()

		require.Len(t, again, 8)
		for _, v := range again {
			require.Zero(t, v)
		}
	})

	t.Run("allocates new slice when capacity insufficient", func(t *testing.T) {
		_, cleanup1 := GetFloat64Slice(2)
		cleanup1()

		slice, cleanup2 := GetFloat64Slice(1000)
		defer cleanup2()

		require.Len(t, slice, 1000)
		require.GreaterOrEqual(t, cap(slice), 1000)
	})

	t.Run("zero size", func(t *testing.T) {
		slice, cleanup := GetFloat64Slice(0)
		defer cleanup()
		require.Empty(t, slice)
	})
}

func TestGetIntSlice(t *testing.T) {
	slice, cleanup := GetIntSlice(4)
	for i := range slice {
		slice[i] = i + 1
	}
	cleanup()

	again, cleanup2 := GetIntSlice(3)
	defer cleanup2()

	require.Equal(t, []int{0, 0, 0}, again)
}
