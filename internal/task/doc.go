// Package task manages background job queuing, processing, and lifecycle.
// Tasks are persisted before they are queued so that work interrupted by a
// restart is recovered: on Start the runner reloads pending and processing
// records and rebuilds executable tasks through per-type factories.
//
// The only task type today is image cleanup, which removes stored image
// files released by item updates and deletes.
package task
