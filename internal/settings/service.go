package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"

	"github.com/sitesettings/sitesettings/internal/db/controller/setting"
	"github.com/sitesettings/sitesettings/internal/db/models"
)

// NoExpectedVersion makes WriteAt behave like Write.
const NoExpectedVersion = 0

// Store is the persistence the Service builds on, implemented by setting.Store.
type Store interface {
	GetByKey(ctx context.Context, key string) (*models.Setting, error)
	ListAll(ctx context.Context) ([]models.Setting, error)
	CompareAndSet(ctx context.Context, key string, expectedVersion int, next *models.Setting) (*models.Setting, error)
	Create(ctx context.Context, row *models.Setting) (*models.Setting, error)
}

// CommitHook is called after a mutation was committed.
type CommitHook func(ctx context.Context, updated *Setting)

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, used for updated_at and changed_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithCommitHook registers hook like OnCommit.
func WithCommitHook(hook CommitHook) Option {
	return func(s *Service) {
		s.hooks = append(s.hooks, hook)
	}
}

// Service enforces the write and rollback protocol on top of a Store.
// It holds no setting state between calls.
type Service struct {
	store Store
	now   func() time.Time

	mu    sync.RWMutex
	hooks []CommitHook
}

// NewService creates a Service on top of store.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("settings store cannot be nil")
	}

	s := &Service{
		store: store,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OnCommit registers a hook that runs after every committed write or rollback.
func (s *Service) OnCommit(hook CommitHook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, hook)
}

// Get returns the current value and metadata of key, without history.
func (s *Service) Get(ctx context.Context, key string) (*Setting, error) {
	return s.get(ctx, key, false)
}

// GetWithHistory returns the setting of key including its history.
func (s *Service) GetWithHistory(ctx context.Context, key string) (*Setting, error) {
	return s.get(ctx, key, true)
}

func (s *Service) get(ctx context.Context, key string, withHistory bool) (*Setting, error) {
	row, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, fromStore(key, err)
	}

	return fromModel(row, withHistory)
}

// List returns all settings ordered by category and key, without history.
func (s *Service) List(ctx context.Context) ([]Setting, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStorage, err)
	}

	list := make([]Setting, 0, len(rows))

	for i := range rows {
		item, err := fromModel(&rows[i], false)
		if err != nil {
			return nil, err
		}

		list = append(list, *item)
	}

	return list, nil
}

// History returns the history of key, newest first.
func (s *Service) History(ctx context.Context, key string) ([]HistoryEntry, error) {
	item, err := s.GetWithHistory(ctx, key)
	if err != nil {
		return nil, err
	}

	return item.History, nil
}

// Write replaces the value of key with raw on behalf of actor.
func (s *Service) Write(ctx context.Context, key string, raw json.RawMessage, actor string) (*Setting, error) {
	return s.WriteAt(ctx, key, raw, NoExpectedVersion, actor)
}

// WriteAt is Write for a caller that read the setting at expectedVersion.
// It fails with ErrVersionConflict as soon as the stored version differs.
func (s *Service) WriteAt(
	ctx context.Context, key string, raw json.RawMessage, expectedVersion int, actor string,
) (*Setting, error) {
	updated, err := s.mutate(ctx, key, expectedVersion, actor, func(current *Setting) (Value, error) {
		return Decode(current.Type, raw)
	})

	observe(opWrite, err)

	return updated, err
}

// Rollback makes the value recorded for targetVersion current again, as a new version.
// The current version is never in the history, so targeting it fails with ErrVersionNotFound.
func (s *Service) Rollback(ctx context.Context, key string, targetVersion int, actor string) (*Setting, error) {
	updated, err := s.mutate(ctx, key, NoExpectedVersion, actor, func(current *Setting) (Value, error) {
		for _, entry := range current.History {
			if entry.Version == targetVersion {
				return entry.Value, nil
			}
		}

		return Value{}, fmt.Errorf("%w: %q version %d", ErrVersionNotFound, key, targetVersion)
	})

	observe(opRollback, err)

	return updated, err
}

// mutate runs the write protocol: read, pick and validate the next value, check the
// caller's version, compare-and-set.
func (s *Service) mutate(
	ctx context.Context,
	key string,
	expectedVersion int,
	actor string,
	nextValue func(current *Setting) (Value, error),
) (*Setting, error) {
	if actor == "" {
		return nil, ErrUnauthorized
	}

	row, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, fromStore(key, err)
	}

	current, err := fromModel(row, true)
	if err != nil {
		return nil, err
	}

	value, err := nextValue(current)
	if err != nil {
		return nil, err
	}

	if err = value.Validate(); err != nil {
		return nil, err
	}

	// an invalid value is reported before a stale version
	if expectedVersion != NoExpectedVersion && expectedVersion != current.CurrentVersion {
		return nil, fmt.Errorf("%w: %q is at version %d, expected %d",
			ErrVersionConflict, key, current.CurrentVersion, expectedVersion)
	}

	now := s.now().UTC()

	history := make([]HistoryEntry, 0, len(current.History)+1)
	history = append(history, HistoryEntry{
		Version:   current.CurrentVersion,
		Value:     current.Value,
		ChangedBy: actor,
		ChangedAt: now,
	})
	history = append(history, current.History...)

	encodedValue, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: encode value of %q: %w", ErrStorage, key, err)
	}

	encodedHistory, err := encodeHistory(history)
	if err != nil {
		return nil, fmt.Errorf("%w: encode history of %q: %w", ErrStorage, key, err)
	}

	next := &models.Setting{
		Value:          encodedValue,
		CurrentVersion: current.CurrentVersion + 1,
		History:        encodedHistory,
		UpdatedAt:      now,
		UpdatedBy:      actor,
	}

	stored, err := s.store.CompareAndSet(ctx, key, current.CurrentVersion, next)
	if err != nil {
		if !errors.Is(err, setting.ErrVersionConflict) {
			log.Error().Err(err).Str("key", key).Msg("failed to persist setting")
		}

		return nil, fromStore(key, err)
	}

	updated, err := fromModel(stored, false)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("key", key).
		Int("version", updated.CurrentVersion).
		Str("actor", actor).
		Msg("setting committed")

	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()

	for _, hook := range hooks {
		hook(ctx, updated)
	}

	return updated, nil
}

// Seed creates every definition that does not exist yet, at version 1 with its default value.
// Existing keys are left untouched. It returns the number of created settings.
func (s *Service) Seed(ctx context.Context, defs []Definition) (int, error) {
	var (
		result  *multierror.Error
		created int
	)

	now := s.now().UTC()

	for _, def := range defs {
		if err := def.Default.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", def.Key, err))
			continue
		}

		value, err := json.Marshal(def.Default)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", def.Key, err))
			continue
		}

		_, err = s.store.Create(ctx, &models.Setting{
			ID:          uuid.NewString(),
			Key:         def.Key,
			Value:       value,
			Type:        string(def.Default.Type),
			Category:    def.Category,
			Label:       def.Label,
			Description: def.Description,
			UpdatedAt:   now,
			CreatedAt:   now,
		})

		switch {
		case errors.Is(err, setting.ErrSettingAlreadyExists):
			log.Debug().Str("key", def.Key).Msg("setting already seeded")
		case err != nil:
			result = multierror.Append(result, fmt.Errorf("%s: %w", def.Key, err))
		default:
			created++
		}
	}

	return created, result.ErrorOrNil()
}
