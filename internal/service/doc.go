// Package service holds the application use cases of the lost-and-found
// API: listing search and category aggregation, owner-gated item
// mutations, accounts with emailed verification codes, and profiles.
//
// Services depend on the store interfaces only. Operations that touch
// several records run inside store.RunInTransaction with tx-bound stores.
// Image files are never deleted inline; a released path is handed to the
// background task runner through an events.EventEmitter.
package service
