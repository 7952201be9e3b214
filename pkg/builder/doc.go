// Package builder implements the mutations a form designer applies to a
// model.Document: inserting fields from the catalog palette, reordering,
// removing, editing fields and editing the option lists of choice fields.
//
// Every operation is pure. It receives a document and returns a new one, or
// an error and no change. Operations re-derive OrderIndex from position and
// keep the option invariant (IsEnd excludes NextQuestion) intact. Removing a
// question clears every branch that targeted it.
//
// Palette insertion and reordering are separate operations; callers pick one
// based on where a drag started. Editor wraps the operations for a single
// editing session and adds Lint for authoring feedback.
package builder
