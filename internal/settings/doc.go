// Package settings implements the versioned write and rollback protocol for site settings.
//
// Every setting carries a current version that grows by exactly one per accepted
// mutation and an append-only history of the values it replaced, newest first.
// The invariant len(History) == CurrentVersion-1 holds for every stored setting.
//
// # Writing
//
// Service.Write reads the stored setting, validates the new value against the
// setting's type and hands the next state to the Store through CompareAndSet,
// conditioned on the version it read. A concurrent writer that committed first
// makes the call fail with ErrVersionConflict; the Service never retries.
//
// Service.WriteAt does the same but also fails when the caller's expected
// version, taken from an earlier Service read, is already stale.
//
// # Rollback
//
// Service.Rollback looks up a history entry and writes its value through the
// same path. The history grows by one entry and nothing is reverted in place.
//
// Example usage:
//
//	store, err := setting.NewStore(db)
//	svc := settings.NewService(store)
//
//	updated, err := svc.Write(ctx, "maintenance_mode", json.RawMessage(`true`), "admin")
//	if errors.Is(err, settings.ErrVersionConflict) {
//	    // re-read and let the admin decide
//	}
//
//	restored, err := svc.Rollback(ctx, "maintenance_mode", 1, "admin")
package settings
