// Package buttonid encodes typed actions into compact identifiers embedded
// in interactive message buttons. A tapped button carries all state needed to
// interpret it, so no server-side lookup happens on tap.
package buttonid

import (
	"fmt"
	"strings"
)

// ButtonType is the action class encoded in the identifier prefix.
type ButtonType string

const (
	TypeSlot     ButtonType = "slot"
	TypeConfirm  ButtonType = "confirm"
	TypeWaitlist ButtonType = "waitlist"
	TypeAction   ButtonType = "action"
	TypeNav      ButtonType = "nav"
)

const (
	// MaxLength ограничение длины идентификатора кнопки
	MaxLength = 256

	// MaxListRowLength ограничение для кнопок в списках
	MaxListRowLength = 200
)

func (t ButtonType) Valid() bool {
	switch t {
	case TypeSlot, TypeConfirm, TypeWaitlist, TypeAction, TypeNav:
		return true
	default:
		return false
	}
}

// Button is a decoded identifier.
type Button struct {
	Type    ButtonType
	Context string
}

func contextChar(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '_' || r == ':' || r == '-'
}

// Validate reports whether id is a well-formed button identifier not longer
// than maxLength. Pass MaxLength unless a stricter UI limit applies.
func Validate(id string, maxLength int) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	typ, context, ok := split(id)
	if !ok || !typ.Valid() || context == "" {
		return false
	}
	for _, r := range context {
		if !contextChar(r) {
			return false
		}
	}
	return true
}

// Parse decodes id into its type and context. The context may itself contain
// underscores: only the first underscore separates. Returns ok=false for any
// string that fails Validate.
func Parse(id string) (Button, bool) {
	if !Validate(id, MaxLength) {
		return Button{}, false
	}
	typ, context, _ := split(id)
	return Button{Type: typ, Context: context}, true
}

// Build assembles an identifier from a type and an already-safe context.
// Use Sanitize first when the context comes from free-form data.
func Build(typ ButtonType, context string) (string, error) {
	if !typ.Valid() {
		return "", fmt.Errorf("invalid button type: %q", typ)
	}
	if context == "" {
		return "", fmt.Errorf("empty button context")
	}
	for _, r := range context {
		if !contextChar(r) {
			return "", fmt.Errorf("disallowed character %q in button context", r)
		}
	}
	id := string(typ) + "_" + context
	if !Validate(id, MaxLength) {
		return "", fmt.Errorf("assembled button id %q is invalid", id)
	}
	return id, nil
}

// Sanitize turns free-form text into a usable context token: whitespace
// becomes underscore, disallowed characters are dropped, runs of underscores
// collapse, leading and trailing underscores are trimmed.
func Sanitize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteByte('_')
		case contextChar(r):
			b.WriteRune(r)
		}
	}
	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}

// Truncate shortens an over-long identifier by cutting the context portion,
// keeping the type prefix intact. Returns ok=false when even the prefix plus
// one context character does not fit.
func Truncate(id string, maxLength int) (string, bool) {
	if len(id) <= maxLength {
		if Validate(id, maxLength) {
			return id, true
		}
		return "", false
	}
	typ, _, ok := split(id)
	if !ok || !typ.Valid() {
		return "", false
	}
	prefixLen := len(typ) + 1
	if prefixLen+1 > maxLength {
		return "", false
	}
	out := strings.TrimRight(id[:maxLength], "_")
	if !Validate(out, maxLength) {
		return "", false
	}
	return out, true
}

func split(id string) (ButtonType, string, bool) {
	idx := strings.IndexByte(id, '_')
	if idx <= 0 || idx == len(id)-1 {
		return "", "", false
	}
	return ButtonType(id[:idx]), id[idx+1:], true
}
