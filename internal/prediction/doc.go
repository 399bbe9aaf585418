// Package prediction builds, validates and serializes collections of
// predicted 3D objects for the open dataset evaluation tooling.
//
// Object and Objects are the canonical in-memory model. They convert to the
// waymo.open_dataset.Objects wire message through the descriptors in
// internal/schema, and Marshal produces the canonical byte encoding that
// WriteFile hands to a filesystem sink.
//
// The schema cannot express the producer's obligations (score range,
// non-default type, matching context names, stable tracking IDs). Validate
// checks them; a Builder applies them according to its ValidationMode.
package prediction
