// Package events decouples services from the background task machinery.
//
// A service that needs follow-up work (removing image files after an item
// is edited or deleted) emits a TaskRequestEvent instead of talking to the
// task runner. Handlers registered on the emitter turn those events into
// tasks. Neither side imports the other.
package events
