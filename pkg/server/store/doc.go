// Package store defines the storage interfaces the API endpoints depend on.
//
// Endpoints take these interfaces so they can be tested with mocks; the
// GORM implementations live in pkg/server/store/gorm.
//
//	users := gormstore.NewUsersStore(db)
//	user, err := users.GetSystemUser(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	    // 404
//	}
package store
