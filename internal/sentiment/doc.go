// Package sentiment classifies text by calling a remote language service.
//
// The Client submits one document per call and returns a Record holding the
// document-level label, the confidence scores for each label, and a
// per-sentence breakdown. Nothing is computed locally; scores pass through
// exactly as the service produced them so that two layers never disagree
// about a number.
//
// # Error Handling
//
// All failures surface as *ServiceError: transport errors, non-2xx
// responses, and document-level rejections that the service embeds inside
// an otherwise successful response. Requests are never retried.
package sentiment
