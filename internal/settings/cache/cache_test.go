package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/sitesettings/sitesettings/internal/settings"
)

type fakeLister struct {
	mu    sync.Mutex
	calls int
	list  []settings.Setting
	err   error
}

func (f *fakeLister) List(_ context.Context) ([]settings.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return f.list, f.err
}

func (f *fakeLister) set(list []settings.Setting, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.list, f.err = list, err
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func TestNewPanicsWithoutLister(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

func TestMergesOverDefaults(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{list: []settings.Setting{
		{Key: settings.KeyMaintenanceMode, Value: settings.Bool(true)},
		{Key: "site_name", Value: settings.Text("Other")},
		{Key: "custom_flag", Value: settings.Bool(true)},
	}}

	c := New(lister)

	assert.True(t, c.Bool(ctx, settings.KeyMaintenanceMode))
	assert.Equal(t, "Other", c.String(ctx, "site_name"))
	assert.True(t, c.Bool(ctx, "custom_flag"))

	// keys missing in the store fall back to their default
	assert.Equal(t, settings.Defaults()[settings.KeyMaintenanceMessage].Text, c.String(ctx, settings.KeyMaintenanceMessage))
	assert.True(t, c.Bool(ctx, "feature_voting_enabled"))

	assert.Equal(t, 1, lister.callCount(), "values are loaded with a single call")
}

func TestTypedAccessors(t *testing.T) {
	ctx := context.Background()
	c := New(&fakeLister{})

	assert.False(t, c.Bool(ctx, "unknown"))
	assert.Empty(t, c.String(ctx, "unknown"))
	assert.False(t, c.Bool(ctx, "site_name"), "text settings are not booleans")
	assert.Empty(t, c.String(ctx, "beta_mode"), "booleans have no text")

	_, ok := c.Get(ctx, "unknown")
	assert.False(t, ok)

	public := c.Public(ctx)
	assert.Nil(t, public["site_logo_url"])
	assert.Equal(t, false, public[settings.KeyMaintenanceMode])
}

func TestInvalidateReloads(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{list: []settings.Setting{{Key: settings.KeyMaintenanceMode, Value: settings.Bool(false)}}}
	c := New(lister)

	assert.False(t, c.Bool(ctx, settings.KeyMaintenanceMode))

	lister.set([]settings.Setting{{Key: settings.KeyMaintenanceMode, Value: settings.Bool(true)}}, nil)

	assert.False(t, c.Bool(ctx, settings.KeyMaintenanceMode), "no refresh without invalidation")

	c.OnCommit(ctx, &settings.Setting{Key: settings.KeyMaintenanceMode})

	assert.True(t, c.Bool(ctx, settings.KeyMaintenanceMode))
	assert.Equal(t, 2, lister.callCount())
}

// blockingLister holds the first List call after it has read its result
// until release is closed.
type blockingLister struct {
	fakeLister

	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newBlockingLister(list []settings.Setting) *blockingLister {
	return &blockingLister{
		fakeLister: fakeLister{list: list},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (b *blockingLister) List(ctx context.Context) ([]settings.Setting, error) {
	list, err := b.fakeLister.List(ctx)

	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})

	return list, err
}

func TestInvalidateDuringLoad(t *testing.T) {
	ctx := context.Background()
	lister := newBlockingLister([]settings.Setting{{Key: settings.KeyMaintenanceMode, Value: settings.Bool(false)}})
	c := New(lister)

	first := make(chan bool)

	go func() {
		first <- c.Bool(ctx, settings.KeyMaintenanceMode)
	}()

	<-lister.entered

	// a save commits while the first load is still running
	lister.set([]settings.Setting{{Key: settings.KeyMaintenanceMode, Value: settings.Bool(true)}}, nil)
	c.Invalidate()
	close(lister.release)

	assert.False(t, <-first, "the running load answers with what it read")
	assert.True(t, c.Bool(ctx, settings.KeyMaintenanceMode), "the result of the running load must not be kept")
	assert.Equal(t, 2, lister.callCount())

	// the fresh load is cached
	assert.True(t, c.Bool(ctx, settings.KeyMaintenanceMode))
	assert.Equal(t, 2, lister.callCount())
}

func TestLoadFailureServesDefaultsAndRetries(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{err: errors.New("db down")}
	c := New(lister)

	snapshot := c.Snapshot(ctx)
	assert.Equal(t, settings.Defaults(), snapshot)

	lister.set([]settings.Setting{{Key: "beta_mode", Value: settings.Bool(true)}}, nil)

	assert.True(t, c.Bool(ctx, "beta_mode"))
	assert.Equal(t, 2, lister.callCount())
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	c := New(&fakeLister{})

	snapshot := c.Snapshot(ctx)
	snapshot[settings.KeyMaintenanceMode] = settings.Bool(true)

	assert.False(t, c.Bool(ctx, settings.KeyMaintenanceMode))
}

func TestConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{list: []settings.Setting{{Key: "beta_mode", Value: settings.Bool(true)}}}
	c := New(lister)

	var g errgroup.Group

	for range 16 {
		g.Go(func() error {
			if !c.Bool(ctx, "beta_mode") {
				return errors.New("beta_mode should be true")
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.LessOrEqual(t, lister.callCount(), 16)
	assert.GreaterOrEqual(t, lister.callCount(), 1)
}
