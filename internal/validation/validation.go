// Package validation binds request payloads and turns validator failures
// into field-keyed 400 responses.
package validation
