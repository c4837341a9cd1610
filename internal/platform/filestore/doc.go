// Package filestore keeps uploaded item images on the local filesystem.
//
// Images are normalized before they are written: the content is sniffed
// (JPEG and PNG only), downscaled to a maximum dimension and re-encoded as
// JPEG. Stored files are addressed by slash-separated paths relative to
// the public directory, e.g. "img/lost/<uuid>.jpg", which is also the URL
// path they are served under.
package filestore
