// Package api handles incoming HTTP requests for listings, categories,
// accounts and profiles. It decodes and validates requests, calls the
// services and maps their errors onto status codes in one place.
package api
