package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocker(t *testing.T) (Locker, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisScheduleLocker(client, 2*time.Second), client
}

func TestWithScheduleLock_RunsCriticalSection(t *testing.T) {
	locker, _ := testLocker(t)

	ran := false
	err := locker.WithScheduleLock(context.Background(), "D001", "2025-01-10", func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithScheduleLock_SecondHolderIsRejected(t *testing.T) {
	locker, _ := testLocker(t)

	err := locker.WithScheduleLock(context.Background(), "D001", "2025-01-10", func(ctx context.Context) error {
		// While held, a contender for the same doctor-date must fail fast.
		inner := locker.WithScheduleLock(ctx, "D001", "2025-01-10", func(context.Context) error {
			t.Fatal("contender must not enter the critical section")
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})
	require.NoError(t, err)
}

func TestWithScheduleLock_OtherDoctorDateIsIndependent(t *testing.T) {
	locker, _ := testLocker(t)

	err := locker.WithScheduleLock(context.Background(), "D001", "2025-01-10", func(ctx context.Context) error {
		otherDoctor := locker.WithScheduleLock(ctx, "D002", "2025-01-10", func(context.Context) error { return nil })
		assert.NoError(t, otherDoctor)

		otherDate := locker.WithScheduleLock(ctx, "D001", "2025-01-11", func(context.Context) error { return nil })
		assert.NoError(t, otherDate)
		return nil
	})
	require.NoError(t, err)
}

func TestWithScheduleLock_ReleasedAfterCompletion(t *testing.T) {
	locker, client := testLocker(t)

	err := locker.WithScheduleLock(context.Background(), "D001", "2025-01-10", func(context.Context) error { return nil })
	require.NoError(t, err)

	exists, err := client.Exists(context.Background(), "lock:schedule:D001:2025-01-10").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	// And immediately reacquirable.
	err = locker.WithScheduleLock(context.Background(), "D001", "2025-01-10", func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestWithScheduleLock_PropagatesCallbackError(t *testing.T) {
	locker, _ := testLocker(t)

	boom := assert.AnError
	err := locker.WithScheduleLock(context.Background(), "D001", "2025-01-10", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
