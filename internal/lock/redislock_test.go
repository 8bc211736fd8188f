package lock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-hall/internal/lock"
)

func newLocker(t *testing.T) (lock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.Locker{R: client, Prefix: "job:"}, mr
}

func TestRunOnceSkipsWhileHeld(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	var inner bool
	ran, err := locker.RunOnce(ctx, "warm", time.Minute, func(ctx context.Context) error {
		require.True(t, mr.Exists("job:warm"))
		again, err := locker.RunOnce(ctx, "warm", time.Minute, func(context.Context) error {
			inner = true
			return nil
		})
		require.NoError(t, err)
		require.False(t, again)
		return nil
	})
	require.NoError(t, err)
	require.True(t, ran)
	require.False(t, inner)
	require.False(t, mr.Exists("job:warm"))
}

func TestRunOnceReleasesOnError(t *testing.T) {
	locker, mr := newLocker(t)

	boom := errors.New("boom")
	ran, err := locker.RunOnce(context.Background(), "warm", time.Minute, func(context.Context) error {
		return boom
	})
	require.True(t, ran)
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("job:warm"))
}

func TestRunOnceLeaseExpires(t *testing.T) {
	locker, mr := newLocker(t)
	require.NoError(t, mr.Set("job:warm", "other-replica"))
	mr.SetTTL("job:warm", time.Second)

	ran, err := locker.RunOnce(context.Background(), "warm", time.Minute, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.False(t, ran)

	mr.FastForward(2 * time.Second)
	ran, err = locker.RunOnce(context.Background(), "warm", time.Minute, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.True(t, ran)
}

func TestRunOnceRequiresClient(t *testing.T) {
	_, err := lock.Locker{}.RunOnce(context.Background(), "warm", time.Minute, func(context.Context) error { return nil })
	require.ErrorIs(t, err, lock.ErrNotConfigured)
}
