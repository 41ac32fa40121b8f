// Package media handles raw image payloads before they reach any analysis
// stage: size validation, format detection, decoding, and downscaling.
//
// All ingestion surfaces (HTTP upload, CLI file argument) funnel payloads
// through this package so the acceptance rules live in exactly one place.
//
// # Size Limits
//
// Payloads are bounded by MaxImageBytes (20 MiB). Validate rejects empty
// payloads with ErrEmptyImage and oversized payloads with ErrImageTooLarge;
// both are sentinel errors suitable for errors.Is checks at the presentation
// layer. A payload of exactly MaxImageBytes is accepted.
//
// # Supported Formats
//
// Decoding supports PNG, JPEG, GIF, BMP, and TIFF. Format detection is based
// on the payload's magic bytes; file names and extensions are never
// consulted, since payloads typically arrive as anonymous byte streams.
//
// # Statelessness
//
// The package keeps no state between calls. Every payload is independent,
// which keeps concurrent requests isolated and makes the functions safe to
// call from any goroutine.
package media
