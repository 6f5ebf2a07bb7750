package mountain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valleyviewvt/snowline/internal/cache"
)

type fakeAdapter struct {
	slug    string
	name    string
	fetches int
	err     error
}

func (f *fakeAdapter) Slug() string { return f.slug }
func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context) (*MountainData, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now().UTC()
	return &MountainData{
		Mountain: MountainInfo{
			Slug:        f.slug,
			Name:        f.name,
			LastUpdated: now,
		},
		SnowReport:   UnavailableSnowReport("http://example.com", now),
		LiftsTerrain: EmptyLiftsTerrain("http://example.com", now),
		GeneratedAt:  now,
	}, nil
}

func newTestService(t *testing.T, ttl time.Duration, adapters ...Adapter) *Service {
	t.Helper()
	return NewService(cache.New(t.TempDir()), ttl, adapters...)
}

func TestGetMountainDataCachesWithinTTL(t *testing.T) {
	a := &fakeAdapter{slug: "mount-snow", name: "Mount Snow"}
	svc := newTestService(t, time.Minute, a)

	first, err := svc.GetMountainData(context.Background(), "mount-snow")
	require.NoError(t, err)
	second, err := svc.GetMountainData(context.Background(), "mount-snow")
	require.NoError(t, err)

	assert.Equal(t, 1, a.fetches, "second call within TTL must not hit upstream")
	assert.Equal(t, first, second)
}

func TestGetMountainDataRefetchesAfterTTL(t *testing.T) {
	a := &fakeAdapter{slug: "mount-snow", name: "Mount Snow"}
	svc := newTestService(t, 20*time.Millisecond, a)

	_, err := svc.GetMountainData(context.Background(), "mount-snow")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = svc.GetMountainData(context.Background(), "mount-snow")
	require.NoError(t, err)
	assert.Equal(t, 2, a.fetches, "expired entry must refetch upstream")
}

func TestGetMountainDataUnknownSlug(t *testing.T) {
	svc := newTestService(t, time.Minute, &fakeAdapter{slug: "okemo", name: "Okemo"})

	_, err := svc.GetMountainData(context.Background(), "narnia")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownResort)
}

func TestGetAllMountainDataToleratesFailures(t *testing.T) {
	good := &fakeAdapter{slug: "okemo", name: "Okemo"}
	bad := &fakeAdapter{slug: "stratton", name: "Stratton", err: errors.New("scrape failed")}
	svc := newTestService(t, time.Minute, good, bad)

	results := svc.GetAllMountainData(context.Background())

	require.Len(t, results, 1)
	assert.Contains(t, results, "okemo")
	assert.NotContains(t, results, "stratton")
}

func TestSlugsPreserveRegistrationOrder(t *testing.T) {
	svc := newTestService(t, time.Minute,
		&fakeAdapter{slug: "mount-snow"},
		&fakeAdapter{slug: "okemo"},
		&fakeAdapter{slug: "stratton"},
	)

	assert.Equal(t, []string{"mount-snow", "okemo", "stratton"}, svc.Slugs())
	assert.True(t, svc.Has("okemo"))
	assert.False(t, svc.Has("narnia"))
}
