// Package overlay draws recognition results onto images: a closed outline
// around every recognized text line, plus optional text labels.
//
// # Coordinate System
//
// Polygons arrive in pixel coordinates of the source image, origin at the
// top-left corner, X growing right and Y growing down. This matches the
// coordinates produced by the recognition service, so geometry flows
// through unchanged.
//
// # Layered Drawing
//
// Rendering composites two layers. The source image is cloned, annotations
// are painted onto a separate transparent layer, and the two are blended
// into the final RGBA image. The source is never touched, a property the
// rest of the application relies on when the same payload feeds multiple
// stages.
//
// # Determinism
//
// Render is a pure function of its inputs: the same image, lines, and
// options always produce byte-identical output. There is no randomness,
// no time dependence, and no shared mutable state between calls.
package overlay
