package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RefKind tags the variant held by a Ref.
type RefKind uint8

const (
	// RefNone is the zero value; it never identifies a field.
	RefNone RefKind = iota
	// RefPersisted identifies a field by its server-assigned id.
	RefPersisted
	// RefEphemeral identifies a field that only exists client side.
	RefEphemeral
)

// Ref identifies a field. It doubles as the branch target type for options:
// a question reference is either Persisted(id) or Ephemeral(localID).
type Ref struct {
	Kind    RefKind
	ID      int64
	LocalID string
}

// Persisted returns a reference to a stored field.
func Persisted(id int64) Ref {
	return Ref{Kind: RefPersisted, ID: id}
}

// Ephemeral returns a reference to a field that has not been saved yet.
func Ephemeral(localID string) Ref {
	return Ref{Kind: RefEphemeral, LocalID: localID}
}

// IsZero reports whether r identifies nothing.
func (r Ref) IsZero() bool {
	return r.Kind == RefNone
}

// IsPersisted reports whether r carries a server-assigned id.
func (r Ref) IsPersisted() bool {
	return r.Kind == RefPersisted
}

// IsEphemeral reports whether r carries a client-only id.
func (r Ref) IsEphemeral() bool {
	return r.Kind == RefEphemeral
}

// Key returns a stable string form usable as a map key or answer key.
// Persisted refs render as the decimal id, ephemeral refs as "tmp:<local>".
func (r Ref) Key() string {
	switch r.Kind {
	case RefPersisted:
		return strconv.FormatInt(r.ID, 10)
	case RefEphemeral:
		return "tmp:" + r.LocalID
	default:
		return ""
	}
}

func (r Ref) String() string {
	switch r.Kind {
	case RefPersisted:
		return fmt.Sprintf("persisted(%d)", r.ID)
	case RefEphemeral:
		return fmt.Sprintf("ephemeral(%s)", r.LocalID)
	default:
		return "none"
	}
}

// RefPtr returns a pointer to a copy of r, handy for Option.NextQuestion.
func RefPtr(r Ref) *Ref {
	return &r
}

// ParseRefKey is the inverse of Ref.Key.
func ParseRefKey(key string) (Ref, error) {
	if local, ok := strings.CutPrefix(key, "tmp:"); ok {
		if local == "" {
			return Ref{}, fmt.Errorf("model: empty ephemeral ref %q", key)
		}
		return Ephemeral(local), nil
	}
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return Ref{}, fmt.Errorf("model: invalid ref %q: %w", key, err)
	}
	return Persisted(id), nil
}

