// Package service provides the indexing and retrieval operations of the
// pharmacogenomics context service on top of a sqlite-vec collection.
//
// A Service is built once per process and shared by the CLI and the HTTP
// handler; it owns no package level state.
package service
