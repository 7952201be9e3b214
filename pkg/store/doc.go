// Package store defines the persistence contract for forms and ships an
// in-memory implementation. Database backed implementations live under
// internal/store.
package store
