package domain

import "fmt"

// Kind distinguishes lost item listings from found item listings.
type Kind string

// Supported item kinds.
const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// Kinds lists every supported kind in a stable order.
var Kinds = []Kind{KindLost, KindFound}

// ParseKind converts a path segment into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLost, KindFound:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown item kind %q", ErrNotFound, s)
	}
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	return k == KindLost || k == KindFound
}

// DateField is the public name of the event date for this kind.
func (k Kind) DateField() string {
	if k == KindFound {
		return "foundDate"
	}
	return "lostDate"
}

// Label is the capitalized kind used in user-facing messages.
func (k Kind) Label() string {
	if k == KindFound {
		return "Found"
	}
	return "Lost"
}
