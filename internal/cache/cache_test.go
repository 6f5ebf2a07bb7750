package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string `json:"value"`
}

func TestMemoryTierHit(t *testing.T) {
	c := New(t.TempDir())

	calls := 0
	compute := func() (payload, error) {
		calls++
		return payload{Value: "fresh"}, nil
	}

	first, err := GetCachedData(c, "k1", time.Minute, compute)
	require.NoError(t, err)
	second, err := GetCachedData(c, "k1", time.Minute, compute)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second call within TTL must not recompute")
}

func TestDiskTierSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	c1 := New(dir)
	_, err := GetCachedData(c1, "k1", time.Minute, func() (payload, error) {
		return payload{Value: "persisted"}, nil
	})
	require.NoError(t, err)

	// A fresh Cache simulates a process restart: empty memory, same dir.
	c2 := New(dir)
	got, err := GetCachedData(c2, "k1", time.Minute, func() (payload, error) {
		t.Fatal("compute must not run on a disk hit")
		return payload{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Value)
}

func TestExpiryTriggersRecompute(t *testing.T) {
	c := New(t.TempDir())

	calls := 0
	compute := func() (payload, error) {
		calls++
		return payload{Value: "v"}, nil
	}

	_, err := GetCachedData(c, "k1", 20*time.Millisecond, compute)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = GetCachedData(c, "k1", 20*time.Millisecond, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entry must recompute")
}

func TestComputeErrorIsNotCached(t *testing.T) {
	c := New(t.TempDir())

	calls := 0
	_, err := GetCachedData(c, "k1", time.Minute, func() (payload, error) {
		calls++
		return payload{}, errors.New("upstream down")
	})
	require.Error(t, err)

	got, err := GetCachedData(c, "k1", time.Minute, func() (payload, error) {
		calls++
		return payload{Value: "recovered"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got.Value)
	assert.Equal(t, 2, calls)
}

func TestDiskTierFailureIsNotFatal(t *testing.T) {
	// A nonexistent nested dir makes every disk write fail.
	c := New("/nonexistent/snowline-cache")

	got, err := GetCachedData(c, "k1", time.Minute, func() (payload, error) {
		return payload{Value: "ok"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Value)

	// Memory tier still works.
	got, err = GetCachedData(c, "k1", time.Minute, func() (payload, error) {
		t.Fatal("memory tier should have served this")
		return payload{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Value)
}
