// Package store declares the persistence contracts for users, categories,
// items and verification codes, along with the sentinel errors every
// implementation maps its driver errors onto. The SQL implementations live
// in internal/platform/sqlstore.
package store
