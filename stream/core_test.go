package stream

import (
	"fmt"
	"testing"
	"time"

	"github.com/friendsoftheweb/utils/internal/th"
)

func TestFromSlice(t *testing.T) {
	t.Run("values", func(t *testing.T) {
		values, errs := toSliceAndErrors(FromSlice([]int{1, 2, 3}, nil))
		th.ExpectSlice(t, values, []int{1, 2, 3})
		th.ExpectValue(t, len(errs), 0)
	})

	t.Run("error", func(t *testing.T) {
		values, errs := toSliceAndErrors(FromSlice([]int{1, 2, 3}, fmt.Errorf("err1")))
		th.ExpectValue(t, len(values), 0)
		th.ExpectSlice(t, errs, []string{"err1"})
	})

	t.Run("empty", func(t *testing.T) {
		values, errs := toSliceAndErrors(FromSlice[int](nil, nil))
		th.ExpectValue(t, len(values), 0)
		th.ExpectValue(t, len(errs), 0)
	})
}

func TestFromChan(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if FromChan[int](nil, nil) != nil {
			t.Errorf("expected nil stream")
		}
	})

	t.Run("error goes first", func(t *testing.T) {
		in := FromChan(th.FromRange(0, 3), fmt.Errorf("err0"))

		first := <-in
		th.ExpectError(t, first.Error, "err0")

		values, errs := toSliceAndErrors(in)
		th.ExpectSlice(t, values, []int{0, 1, 2})
		th.ExpectValue(t, len(errs), 0)
	})
}

func TestDrainNB(t *testing.T) {
	in := FromChan(th.FromRange(0, 100), nil)
	DrainNB(in)

	th.ExpectNotHang(t, 1*time.Second, func() {
		for range in {
		}
	})
}
