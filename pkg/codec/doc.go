// Package codec converts editable form documents to and from the persisted
// form shape exchanged with storage.
//
// ToPersisted rewrites orderIndex from position, drops editor-only state and
// nulls branching references that still point at unsaved fields. Those
// references are reported, never treated as errors. FromPersisted is the
// inverse and marks every identity as persisted.
package codec
