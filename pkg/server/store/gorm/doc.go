// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// SQL for writes and searches comes from pkg/queries; the stores run it,
// wrap multi-statement writes in a transaction and translate empty results
// into store.ErrNotFound or store.ErrConflict.
package gorm
