// Package ocr extracts printed and handwritten text from images by calling
// a remote image analysis service.
//
// Recognition is fully delegated: no OCR engine runs in-process. The Client
// submits raw image bytes to the service's read feature and converts the
// response into RecognitionResult, a model of text blocks, lines, and words
// with bounding polygons in source image coordinates.
//
// # Authentication
//
// Every request carries a subscription key in the Ocp-Apim-Subscription-Key
// header. The key and the service endpoint are supplied at construction
// time; the package never reads the environment itself.
//
// # Empty Results
//
// An image with no readable text is a normal outcome. RecognizeText returns
// a result whose IsEmpty method reports true, and callers decide whether
// downstream stages still make sense. Only transport and service failures
// produce errors.
//
// # Error Handling
//
// All failures are reported as *ServiceError, which records the operation,
// the HTTP status (when a response was received), and the underlying cause.
// Requests are never retried; callers own any retry policy. Timeouts are
// enforced by the embedded HTTP client and can also be tightened per call
// through the context.
package ocr
