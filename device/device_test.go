package device

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDevice(t *testing.T) {

	t.Run("Memory", func(t *testing.T) {

		d := New(0, 1<<10, nil)
		defer d.Close()

		a, err := d.Alloc(512)
		require.NoError(t, err)
		require.Equal(t, uint64(512), d.Used())

		b, err := NewBuffer[uint64](d, 64)
		require.NoError(t, err)
		require.Equal(t, uint64(1024), d.Used())
		require.Equal(t, uint64(0), d.Available())

		_, err = d.Alloc(1)
		require.ErrorIs(t, err, ErrNotEnoughMemory)

		a.Free()
		a.Free()
		require.Equal(t, uint64(512), d.Used())

		b.Free()
		require.Equal(t, uint64(0), d.Used())
		require.Equal(t, uint64(1024), d.Peak())
	})

	t.Run("SizeOf", func(t *testing.T) {
		require.Equal(t, uint64(12), SizeOf[uint32](3))
		require.Equal(t, uint64(48), SizeOf[complex128](3))
	})

	t.Run("Copy", func(t *testing.T) {

		d := New(1, 1<<10, nil)
		defer d.Close()

		b, err := NewBuffer[uint32](d, 8)
		require.NoError(t, err)
		defer b.Free()

		src := []uint32{1, 2, 3, 4}
		require.NoError(t, CopyToDevice(b, 2, src))

		dst := make([]uint32, 8)
		require.NoError(t, CopyToHost(dst, b, 0))
		require.NoError(t, d.Stream().Synchronize())

		require.Equal(t, []uint32{0, 0, 1, 2, 3, 4, 0, 0}, dst)

		require.Error(t, CopyToDevice(b, 6, src))
		require.Error(t, CopyToHost(make([]uint32, 9), b, 0))
	})
}

func TestStream(t *testing.T) {

	t.Run("Order", func(t *testing.T) {

		d := New(0, 0, nil)
		defer d.Close()

		var order []int
		for i := 0; i < 256; i++ {
			require.NoError(t, d.Stream().Submit(func() error {
				order = append(order, i)
				return nil
			}))
		}
		require.NoError(t, d.Stream().Synchronize())

		require.Len(t, order, 256)
		for i := range order {
			require.Equal(t, i, order[i])
		}
		require.Equal(t, 256, d.Stream().Executed())
	})

	t.Run("Error", func(t *testing.T) {

		d := New(0, 0, nil)
		defer d.Close()

		errA, errB := errors.New("a"), errors.New("b")

		require.NoError(t, d.Stream().Submit(func() error { return errA }))
		require.NoError(t, d.Stream().Submit(func() error { return errB }))
		require.ErrorIs(t, d.Stream().Synchronize(), errA)
		require.NoError(t, d.Stream().Synchronize())
		require.Equal(t, 2, d.Stream().Executed())
	})

	t.Run("Closed", func(t *testing.T) {
		d := New(0, 0, nil)
		d.Close()
		d.Close()
		require.ErrorIs(t, d.Stream().Submit(func() error { return nil }), ErrClosed)
		require.ErrorIs(t, d.Stream().Synchronize(), ErrClosed)
	})
}

func TestPlan(t *testing.T) {

	for _, tc := range []struct {
		count, devices int
		want           []Shard
	}{
		{0, 4, nil},
		{4, 0, nil},
		{3, 8, []Shard{{0, 0, 1}, {1, 1, 2}, {2, 2, 3}}},
		{8, 4, []Shard{{0, 0, 2}, {1, 2, 4}, {2, 4, 6}, {3, 6, 8}}},
		{10, 4, []Shard{{0, 0, 2}, {1, 2, 4}, {2, 4, 6}, {3, 6, 10}}},
		{7, 1, []Shard{{0, 0, 7}}},
	} {
		t.Run(fmt.Sprintf("Count=%d/Devices=%d", tc.count, tc.devices), func(t *testing.T) {
			shards := Plan(tc.count, tc.devices)
			require.Equal(t, tc.want, shards)

			var total int
			for _, s := range shards {
				total += s.Len()
			}
			require.Equal(t, tc.count, total)
		})
	}

	require.Panics(t, func() { Plan(-1, 2) })
}

func TestSet(t *testing.T) {

	s := NewSet(3, 1<<10, nil)
	defer s.Close()

	require.Equal(t, 3, s.Len())
	require.Len(t, s.Plan(2), 2)

	errA := errors.New("a")
	require.NoError(t, s.Devices[1].Stream().Submit(func() error { return errA }))
	require.ErrorIs(t, s.Synchronize(), errA)
	require.NoError(t, s.Synchronize())

	require.Panics(t, func() { NewSet(0, 0, nil) })
}
