package mockapi

import (
	"context"
	"testing"
	"time"

	"github.com/friendsoftheweb/utils/internal/th"
)

func TestGetUser(t *testing.T) {
	prev := SetMaxLatency(0)
	defer SetMaxLatency(prev)

	ctx := context.Background()

	t.Run("deterministic", func(t *testing.T) {
		u1, err := GetUser(ctx, 7)
		th.ExpectNoError(t, err)

		u2, err := GetUser(ctx, 7)
		th.ExpectNoError(t, err)

		th.ExpectValue(t, u1.Name, u2.Name)
		th.ExpectValue(t, u1.Email, u2.Email)
		th.ExpectValue(t, u1.CreatedAt, u2.CreatedAt)
		th.ExpectValue(t, u1.ID, 7)
	})

	t.Run("copy", func(t *testing.T) {
		u, err := GetUser(ctx, 1)
		th.ExpectNoError(t, err)
		u.Name = "changed"

		u, err = GetUser(ctx, 1)
		th.ExpectNoError(t, err)
		if u.Name == "changed" {
			t.Errorf("internal data was modified through the returned pointer")
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := GetUser(ctx, 1000)
		th.ExpectErrorIs(t, err, ErrNotFound)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := GetUser(ctx, 1)
		th.ExpectErrorIs(t, err, context.Canceled)
	})
}

func TestListUserIDs(t *testing.T) {
	prev := SetMaxLatency(10 * time.Millisecond)
	defer SetMaxLatency(prev)

	ids, err := ListUserIDs(context.Background())
	th.ExpectNoError(t, err)
	th.ExpectValue(t, len(ids), 100)
	th.ExpectValue(t, ids[0], 1)
	th.ExpectValue(t, ids[99], 100)
}
