// Package submission describes and checks the payload a finished fill
// produces. The payload is a JSON object keyed by field reference (see
// model.Ref.Key): question answers are restricted to their option values
// and ordinary fields are typed by field type.
package submission
