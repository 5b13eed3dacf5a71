package settings

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/sitesettings/sitesettings/internal/db/controller/setting"
	"github.com/sitesettings/sitesettings/internal/db/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *setting.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Setting{}))

	store, err := setting.NewStore(db)
	require.NoError(t, err)

	return store
}

func newTestService(t *testing.T, store Store, defs ...Definition) *Service {
	t.Helper()

	svc := NewService(store, WithClock(func() time.Time { return testNow }))

	if len(defs) > 0 {
		_, err := svc.Seed(context.Background(), defs)
		require.NoError(t, err)
	}

	return svc
}

var maintenanceDef = Definition{Key: KeyMaintenanceMode, Category: CategorySystem, Default: Bool(false)}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func assertHistoryInvariant(t *testing.T, svc *Service, key string) {
	t.Helper()

	s, err := svc.GetWithHistory(context.Background(), key)
	require.NoError(t, err)
	assert.Len(t, s.History, s.CurrentVersion-1)
}

func TestMaintenanceModeScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), maintenanceDef)

	seeded, err := svc.GetWithHistory(ctx, KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, Bool(false), seeded.Value)
	assert.Equal(t, 1, seeded.CurrentVersion)
	assert.Empty(t, seeded.History)

	written, err := svc.Write(ctx, KeyMaintenanceMode, raw(`true`), "admin1")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), written.Value)
	assert.Equal(t, 2, written.CurrentVersion)
	assert.Equal(t, "admin1", written.UpdatedBy)
	assert.Nil(t, written.History)

	history, err := svc.History(ctx, KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, []HistoryEntry{
		{Version: 1, Value: Bool(false), ChangedBy: "admin1", ChangedAt: testNow},
	}, history)

	rolled, err := svc.Rollback(ctx, KeyMaintenanceMode, 1, "admin2")
	require.NoError(t, err)
	assert.Equal(t, Bool(false), rolled.Value)
	assert.Equal(t, 3, rolled.CurrentVersion)

	history, err = svc.History(ctx, KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, []HistoryEntry{
		{Version: 2, Value: Bool(true), ChangedBy: "admin2", ChangedAt: testNow},
		{Version: 1, Value: Bool(false), ChangedBy: "admin1", ChangedAt: testNow},
	}, history)

	_, err = svc.Write(ctx, KeyMaintenanceMode, raw(`"yes"`), "admin1")
	require.ErrorIs(t, err, ErrValidation)

	current, err := svc.GetWithHistory(ctx, KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, 3, current.CurrentVersion)
	assert.Equal(t, Bool(false), current.Value)
	assert.Len(t, current.History, 2)
}

func TestVersionGrowsByOnePerWrite(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), Definition{Key: "site_name", Category: CategoryGeneral, Default: Text("a")})

	for i := 1; i <= 10; i++ {
		value, err := json.Marshal(Text(string(rune('a' + i))))
		require.NoError(t, err)

		updated, err := svc.Write(ctx, "site_name", value, "admin")
		require.NoError(t, err)
		assert.Equal(t, i+1, updated.CurrentVersion)

		assertHistoryInvariant(t, svc, "site_name")
	}

	history, err := svc.History(ctx, "site_name")
	require.NoError(t, err)

	for i, entry := range history {
		assert.Equal(t, len(history)-i, entry.Version, "history must be newest first")
	}
}

func TestWriteThenRollbackGrowsHistoryByTwo(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), Definition{Key: "site_name", Category: CategoryGeneral, Default: Text("before")})

	_, err := svc.Write(ctx, "site_name", raw(`"second"`), "admin")
	require.NoError(t, err)

	before, err := svc.GetWithHistory(ctx, "site_name")
	require.NoError(t, err)

	_, err = svc.Write(ctx, "site_name", raw(`"X"`), "admin")
	require.NoError(t, err)

	restored, err := svc.Rollback(ctx, "site_name", before.CurrentVersion, "admin")
	require.NoError(t, err)
	assert.Equal(t, before.Value, restored.Value)

	after, err := svc.GetWithHistory(ctx, "site_name")
	require.NoError(t, err)
	assert.Len(t, after.History, len(before.History)+2)

	// the head records the value replaced by the rollback
	assert.Equal(t, Text("X"), after.History[0].Value)
	assertHistoryInvariant(t, svc, "site_name")
}

func TestRollbackErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), maintenanceDef)

	_, err := svc.Write(ctx, KeyMaintenanceMode, raw(`true`), "admin")
	require.NoError(t, err)

	testCases := []struct {
		name    string
		version int
	}{
		{name: "current version", version: 2},
		{name: "future version", version: 9},
		{name: "zero", version: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Rollback(ctx, KeyMaintenanceMode, tc.version, "admin")
			require.ErrorIs(t, err, ErrVersionNotFound)
			require.ErrorIs(t, err, ErrNotFound)

			s, err := svc.Get(ctx, KeyMaintenanceMode)
			require.NoError(t, err)
			assert.Equal(t, 2, s.CurrentVersion)
		})
	}
}

func TestUnknownKeyIsNeverCreated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), maintenanceDef)

	_, err := svc.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.History(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Write(ctx, "nope", raw(`true`), "admin")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Rollback(ctx, "nope", 1, "admin")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Write(ctx, "", raw(`true`), "admin")
	require.ErrorIs(t, err, ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, KeyMaintenanceMode, list[0].Key)
}

func TestWriteRequiresActor(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), maintenanceDef)

	_, err := svc.Write(ctx, KeyMaintenanceMode, raw(`true`), "")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Rollback(ctx, KeyMaintenanceMode, 1, "")
	require.ErrorIs(t, err, ErrUnauthorized)

	s, err := svc.Get(ctx, KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentVersion)
}

func TestWriteAtStaleVersion(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), maintenanceDef)

	read, err := svc.Get(ctx, KeyMaintenanceMode)
	require.NoError(t, err)

	_, err = svc.WriteAt(ctx, KeyMaintenanceMode, raw(`true`), read.CurrentVersion, "admin1")
	require.NoError(t, err)

	// admin2 still holds the version read before admin1 saved
	_, err = svc.WriteAt(ctx, KeyMaintenanceMode, raw(`false`), read.CurrentVersion, "admin2")
	require.ErrorIs(t, err, ErrVersionConflict)

	s, err := svc.Get(ctx, KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CurrentVersion)
	assert.Equal(t, Bool(true), s.Value)
}

func TestWriteAtStaleVersionInvalidValue(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), maintenanceDef)

	_, err := svc.Write(ctx, KeyMaintenanceMode, raw(`true`), "admin1")
	require.NoError(t, err)

	_, err = svc.WriteAt(ctx, KeyMaintenanceMode, raw(`"yes"`), 1, "admin2")
	require.ErrorIs(t, err, ErrValidation)
	require.NotErrorIs(t, err, ErrVersionConflict)

	s, err := svc.Get(ctx, KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CurrentVersion)
}

func TestImageValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), Definition{Key: "site_logo_url", Category: CategoryGeneral, Default: Image("")})

	_, err := svc.Write(ctx, "site_logo_url", raw(`"javascript:alert(1)"`), "admin")
	require.ErrorIs(t, err, ErrValidation)

	updated, err := svc.Write(ctx, "site_logo_url", raw(`"https://cdn.example.com/logo.png"`), "admin")
	require.NoError(t, err)
	assert.Equal(t, Image("https://cdn.example.com/logo.png"), updated.Value)

	cleared, err := svc.Write(ctx, "site_logo_url", raw(`null`), "admin")
	require.NoError(t, err)
	assert.Equal(t, Image(""), cleared.Value)
	assert.Equal(t, 3, cleared.CurrentVersion)
}

// barrierStore lets every caller of GetByKey continue only once all of them have read.
type barrierStore struct {
	*setting.Store
	readers sync.WaitGroup
}

func (b *barrierStore) GetByKey(ctx context.Context, key string) (*models.Setting, error) {
	row, err := b.Store.GetByKey(ctx, key)

	b.readers.Done()
	b.readers.Wait()

	return row, err
}

func TestConcurrentWritersExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	base := newTestStore(t)
	newTestService(t, base, maintenanceDef)

	store := &barrierStore{Store: base}
	store.readers.Add(2)

	svc := newTestService(t, store)

	values := []string{`true`, `false`}
	results := make([]error, len(values))

	var g errgroup.Group

	for i, value := range values {
		g.Go(func() error {
			_, results[i] = svc.Write(ctx, KeyMaintenanceMode, raw(value), "admin")
			return nil
		})
	}

	require.NoError(t, g.Wait())

	var winner = -1

	for i, err := range results {
		if err == nil {
			require.Equal(t, -1, winner, "only one writer may win")
			winner = i

			continue
		}

		require.ErrorIs(t, err, ErrVersionConflict)
	}

	require.NotEqual(t, -1, winner, "one writer must win")

	row, err := base.GetByKey(ctx, KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, 2, row.CurrentVersion)
	assert.JSONEq(t, values[winner], string(row.Value))
}

func TestOnCommitHooks(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), maintenanceDef)

	var committed []int

	svc.OnCommit(func(_ context.Context, updated *Setting) {
		committed = append(committed, updated.CurrentVersion)
	})

	_, err := svc.Write(ctx, KeyMaintenanceMode, raw(`true`), "admin")
	require.NoError(t, err)

	_, err = svc.Write(ctx, KeyMaintenanceMode, raw(`"no"`), "admin")
	require.Error(t, err)

	_, err = svc.Rollback(ctx, KeyMaintenanceMode, 1, "admin")
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, committed)
}

func TestMutationMetrics(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t), maintenanceDef)

	committed := testutil.ToFloat64(mutations.WithLabelValues(string(opWrite), outcomeCommitted))
	invalid := testutil.ToFloat64(mutations.WithLabelValues(string(opWrite), outcomeInvalid))
	notFound := testutil.ToFloat64(mutations.WithLabelValues(string(opRollback), outcomeNotFound))

	_, _ = svc.Write(ctx, KeyMaintenanceMode, raw(`true`), "admin")
	_, _ = svc.Write(ctx, KeyMaintenanceMode, raw(`1`), "admin")
	_, _ = svc.Rollback(ctx, KeyMaintenanceMode, 7, "admin")

	assert.InDelta(t, committed+1, testutil.ToFloat64(mutations.WithLabelValues(string(opWrite), outcomeCommitted)), 0)
	assert.InDelta(t, invalid+1, testutil.ToFloat64(mutations.WithLabelValues(string(opWrite), outcomeInvalid)), 0)
	assert.InDelta(t, notFound+1, testutil.ToFloat64(mutations.WithLabelValues(string(opRollback), outcomeNotFound)), 0)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t))

	created, err := svc.Seed(ctx, Definitions)
	require.NoError(t, err)
	assert.Equal(t, len(Definitions), created)

	_, err = svc.Write(ctx, KeyMaintenanceMode, raw(`true`), "admin")
	require.NoError(t, err)

	// seeding again keeps existing rows untouched
	created, err = svc.Seed(ctx, Definitions)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	s, err := svc.Get(ctx, KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, Bool(true), s.Value)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(Definitions))

	for _, item := range list {
		assert.Nil(t, item.History)
		assert.NotEmpty(t, item.ID)
	}
}

func TestSeedCollectsErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t))

	created, err := svc.Seed(ctx, []Definition{
		{Key: "bad_logo", Category: CategoryGeneral, Default: Image("not a url")},
		{Key: "bad_type", Category: CategoryGeneral, Default: Value{Type: "number"}},
		{Key: "beta_mode", Category: CategorySystem, Default: Bool(false)},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "bad_logo")
	assert.Equal(t, 1, created)
}

func TestMalformedStoredValue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := newTestService(t, store)

	_, err := store.Create(ctx, &models.Setting{
		ID:    "x",
		Key:   "broken",
		Type:  string(TypeBoolean),
		Value: []byte(`"maybe"`),
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "broken")
	require.ErrorIs(t, err, ErrStorage)
	require.NotErrorIs(t, err, ErrValidation)

	_, err = svc.Write(ctx, "broken", raw(`true`), "admin")
	require.ErrorIs(t, err, ErrStorage)
}

func TestCanceledContextLeavesVersion(t *testing.T) {
	svc := newTestService(t, newTestStore(t), maintenanceDef)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Write(ctx, KeyMaintenanceMode, raw(`true`), "admin")
	require.Error(t, err)

	s, err := svc.Get(context.Background(), KeyMaintenanceMode)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentVersion)
}
