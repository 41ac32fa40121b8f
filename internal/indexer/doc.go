// Package indexer submits videos to a remote indexing service and retrieves
// the resulting insight documents.
//
// Indexing is asynchronous on the service side: Upload returns as soon as
// the video is accepted, and the index document carries a state that moves
// from Uploaded through Processing to Processed or Failed. Index documents
// are proxied verbatim; this package extracts only the state field and
// never reshapes the rest of the JSON.
package indexer
