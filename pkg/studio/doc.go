// Package studio provides the content store and gallery editing core of the
// photography studio site.
//
// Documents (portfolio sessions and wedding reports) carry ordered image
// collections. Each entry of a collection is an ImageReference pointing at an
// uploaded Asset. Collections are always persisted whole: every write replaces
// the entire field with the editor's current sequence, guarded by the
// document revision seen on the last read.
//
// The Service interface is the store itself, backed by a pluggable Repository
// (memory, Postgres, SQLite) and BlobStore (memory, filesystem, S3).
// The Editor and Uploader only depend on the narrower ContentStore interface,
// which is also implemented by the HTTP client in the client subpackage.
package studio
