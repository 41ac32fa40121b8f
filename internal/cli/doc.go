// Package cli implements the textlens command line interface: serve,
// analyze, and index.
package cli
