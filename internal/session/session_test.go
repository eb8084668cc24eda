package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sid-1", 42, time.Hour))
	uid, err := s.Load(ctx, "sid-1")
	require.NoError(t, err)
	require.Equal(t, uint64(42), uid)

	require.NoError(t, s.Delete(ctx, "sid-1"))
	_, err = s.Load(ctx, "sid-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(context.Background(), "sid", 1, time.Minute))
	now = now.Add(2 * time.Minute)
	_, err := s.Load(context.Background(), "sid")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	s := NewRedisStore(rdb, "")
	ctx := context.Background()

	mock.ExpectSet("session:abc", "7", time.Hour).SetVal("OK")
	mock.ExpectGet("session:abc").SetVal("7")
	mock.ExpectGet("session:gone").RedisNil()
	mock.ExpectDel("session:abc").SetVal(1)

	require.NoError(t, s.Save(ctx, "abc", 7, time.Hour))
	uid, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, uint64(7), uid)
	_, err = s.Load(ctx, "gone")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, "abc"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_LoadError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	s := NewRedisStore(rdb, "sess")

	mock.ExpectGet("sess:abc").SetErr(errors.New("conn refused"))
	_, err := s.Load(context.Background(), "abc")
	require.EqualError(t, err, "conn refused")
}

func TestManager_BeginResolveEnd(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, "secret", time.Hour)
	ctx := context.Background()

	raw, exp, err := m.Begin(ctx, 9)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	uid, sid, err := m.Resolve(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, uint64(9), uid)
	require.NotEmpty(t, sid)

	require.NoError(t, m.End(ctx, raw))
	_, _, err = m.Resolve(ctx, raw)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "sid", 1, time.Hour))
	m := NewManager(store, "secret", time.Hour)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": "sid",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("other"))
	require.NoError(t, err)

	_, _, err = m.Resolve(context.Background(), forged)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager(NewMemoryStore(), "secret", time.Hour)
	raw, _, err := m.Begin(context.Background(), 1)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = m.Resolve(context.Background(), raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_EndIgnoresGarbage(t *testing.T) {
	m := NewManager(NewMemoryStore(), "secret", time.Hour)
	require.NoError(t, m.End(context.Background(), "not-a-token"))
	_, _, err := m.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidToken)
}
