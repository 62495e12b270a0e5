package meta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadOrInit_FirstRun はファイル未存在時の初回起動判定を検証します。
func TestLoadOrInit_FirstRun(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".meta")
	now := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	m, err := LoadOrInit(path, now)
	require.NoError(t, err)
	assert.True(t, m.IsFirstLaunch)
	assert.Equal(t, now.Unix(), m.FirstLaunchTime)
	assert.True(t, m.FirstLaunch().Equal(now))

	// 次回起動用にis_first_launch=falseが書き残される
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_first_launch":false,"first_launch_time":1717245000}`, string(b))
}

// TestLoadOrInit_SecondRun は2回目以降が差分更新扱いになることを検証します。
func TestLoadOrInit_SecondRun(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".meta")
	first := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	_, err := LoadOrInit(path, first)
	require.NoError(t, err)

	// nowが進んでも初回起動時刻は最初の値のまま
	m, err := LoadOrInit(path, first.Add(48*time.Hour))
	require.NoError(t, err)
	assert.False(t, m.IsFirstLaunch)
	assert.Equal(t, first.Unix(), m.FirstLaunchTime)
}

// TestLoadOrInit_Corrupted は壊れたファイルをエラーとして報告することを検証します。
func TestLoadOrInit_Corrupted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".meta")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := LoadOrInit(path, time.Now())
	assert.Error(t, err)
}
