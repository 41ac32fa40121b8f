// Package pipeline orchestrates the image analysis flow.
//
// A Pipeline takes raw image bytes through five stages: size validation,
// remote text recognition, overlay rendering, text aggregation, and remote
// sentiment classification. The remote stages sit behind the Recognizer and
// Analyzer interfaces, so the pipeline can be exercised entirely with local
// fakes.
//
// # Stage Ordering
//
// Stages run strictly in order. A stage failure stops the flow before any
// later stage is invoked: an invalid payload never reaches the vision
// service, and a recognition failure never reaches the renderer or the
// language service. The one deliberate soft spot is an image with no
// recognizable text: that is a normal outcome, producing an annotated copy
// with zero outlines and skipping only the sentiment stage.
//
// # Request Isolation
//
// Every Analyze call is self-contained. The pipeline holds no per-request
// state, caches nothing between calls, and never mutates its inputs, so
// concurrent requests cannot observe one another.
package pipeline
