package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdata_backend/internal/feature/marketdata/domain/entity"
)

type stubMinMaxRepo struct {
	extremes []entity.DailyExtreme
	err      error
	calls    int
}

func (s *stubMinMaxRepo) FindDailyExtremes(_ context.Context, _ string) ([]entity.DailyExtreme, error) {
	s.calls++
	return s.extremes, s.err
}

func sampleExtremes() []entity.DailyExtreme {
	return []entity.DailyExtreme{
		{
			Kind: "min", Time: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			Open: 100, Close: 101, High: 105, Low: 90, Volume: 1, Exchange: "Kraken",
		},
	}
}

// TestFindDailyExtremes_CacheMiss はミス時にストアへ降り、結果をキャッシュすることを検証します。
func TestFindDailyExtremes_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	inner := &stubMinMaxRepo{extremes: sampleExtremes()}
	repo := NewCachingMinMaxRepository(rdb, time.Minute, inner, "minmax")

	b, err := json.Marshal(sampleExtremes())
	require.NoError(t, err)
	mock.ExpectGet("minmax:BTCUSD").RedisNil()
	mock.ExpectSet("minmax:BTCUSD", b, time.Minute).SetVal("OK")

	got, err := repo.FindDailyExtremes(context.Background(), "BTCUSD")
	require.NoError(t, err)
	assert.Equal(t, sampleExtremes(), got)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindDailyExtremes_CacheHit はヒット時にストアへ降りないことを検証します。
func TestFindDailyExtremes_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	inner := &stubMinMaxRepo{err: errors.New("must not be called")}
	repo := NewCachingMinMaxRepository(rdb, time.Minute, inner, "minmax")

	b, err := json.Marshal(sampleExtremes())
	require.NoError(t, err)
	mock.ExpectGet("minmax:BTCUSD").SetVal(string(b))

	got, err := repo.FindDailyExtremes(context.Background(), "BTCUSD")
	require.NoError(t, err)
	assert.Equal(t, sampleExtremes(), got)
	assert.Equal(t, 0, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindDailyExtremes_CorruptedEntry は壊れたエントリを削除してストアへ降りることを検証します。
func TestFindDailyExtremes_CorruptedEntry(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	inner := &stubMinMaxRepo{extremes: sampleExtremes()}
	repo := NewCachingMinMaxRepository(rdb, time.Minute, inner, "minmax")

	b, err := json.Marshal(sampleExtremes())
	require.NoError(t, err)
	mock.ExpectGet("minmax:BTCUSD").SetVal("not json")
	mock.ExpectDel("minmax:BTCUSD").SetVal(1)
	mock.ExpectSet("minmax:BTCUSD", b, time.Minute).SetVal("OK")

	got, err := repo.FindDailyExtremes(context.Background(), "BTCUSD")
	require.NoError(t, err)
	assert.Equal(t, sampleExtremes(), got)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindDailyExtremes_NilRedis はRedis未設定時に素通しになることを検証します。
func TestFindDailyExtremes_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &stubMinMaxRepo{extremes: sampleExtremes()}
	repo := NewCachingMinMaxRepository(nil, time.Minute, inner, "minmax")

	got, err := repo.FindDailyExtremes(context.Background(), "BTCUSD")
	require.NoError(t, err)
	assert.Equal(t, sampleExtremes(), got)
	assert.Equal(t, 1, inner.calls)
}

// TestFindDailyExtremes_InnerError はストアのエラーがキャッシュされず伝播することを検証します。
func TestFindDailyExtremes_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	inner := &stubMinMaxRepo{err: errors.New("store down")}
	repo := NewCachingMinMaxRepository(rdb, time.Minute, inner, "minmax")

	mock.ExpectGet("minmax:BTCUSD").RedisNil()

	_, err := repo.FindDailyExtremes(context.Background(), "BTCUSD")
	assert.EqualError(t, err, "store down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestNewCachingMinMaxRepository_Defaults はTTLと名前空間の既定値を検証します。
func TestNewCachingMinMaxRepository_Defaults(t *testing.T) {
	t.Parallel()

	repo := NewCachingMinMaxRepository(nil, 0, &stubMinMaxRepo{}, "")
	assert.Equal(t, 5*time.Minute, repo.ttl)
	assert.Equal(t, "minmax", repo.namespace)
}

// TestCacheKey_Safe はキーを壊す文字が置換されることを検証します。
func TestCacheKey_Safe(t *testing.T) {
	t.Parallel()

	repo := NewCachingMinMaxRepository(nil, time.Minute, &stubMinMaxRepo{}, "minmax")
	assert.Equal(t, "minmax:BTC_USD", repo.cacheKey("BTC:USD"))
	assert.Equal(t, "minmax:_x_", repo.cacheKey("*x?"))
}
