// Package model defines the in-memory form document edited by the builder and
// walked by the flow engine. A Document owns an ordered list of fields; choice
// fields (select, checkbox, radio, question) own an ordered list of options.
// Question-field options may branch to another question through NextQuestion
// or end the question flow through IsEnd.
//
// Fields are identified by a Ref that is either Persisted (server assigned) or
// Ephemeral (client assigned, not yet saved). Branch targets use the same Ref
// so options can point at questions that have not been saved yet.
//
// OrderIndex is derived from slice position. Accessors that expose fields in
// order recompute it first instead of trusting stored values.
package model
