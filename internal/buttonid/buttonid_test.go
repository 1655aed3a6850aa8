package buttonid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		id   string
		max  int
		want bool
	}{
		{"slot id", "slot_2024-06-01:14:00", MaxLength, true},
		{"confirm id", "confirm_booking:42", MaxLength, true},
		{"nav id", "nav_back", MaxLength, true},
		{"empty", "", MaxLength, false},
		{"unknown prefix", "foo_bar", MaxLength, false},
		{"no underscore", "slot", MaxLength, false},
		{"empty context", "slot_", MaxLength, false},
		{"bad char", "slot_a b", MaxLength, false},
		{"over limit", "slot_" + strings.Repeat("x", 300), MaxLength, false},
		{"list row limit", "slot_" + strings.Repeat("x", 210), MaxListRowLength, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.id, tt.max))
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("ContextKeepsUnderscores", func(t *testing.T) {
		b, ok := Parse("action_cancel_booking_42")
		require.True(t, ok)
		assert.Equal(t, TypeAction, b.Type)
		assert.Equal(t, "cancel_booking_42", b.Context)
	})

	t.Run("InvalidReturnsFalse", func(t *testing.T) {
		_, ok := Parse("bogus_context")
		assert.False(t, ok)
	})
}

func TestBuild(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		ids := []string{
			"slot_2024-06-01:14:00",
			"waitlist_svc:7",
			"action_confirm_1",
			"nav_menu:main",
		}
		for _, id := range ids {
			b, ok := Parse(id)
			require.True(t, ok, id)

			rebuilt, err := Build(b.Type, b.Context)
			require.NoError(t, err)
			assert.Equal(t, id, rebuilt)
		}
	})

	t.Run("EmptyContext", func(t *testing.T) {
		_, err := Build(TypeSlot, "")
		assert.Error(t, err)
	})

	t.Run("DisallowedChars", func(t *testing.T) {
		_, err := Build(TypeSlot, "маникюр")
		assert.Error(t, err)
	})

	t.Run("InvalidType", func(t *testing.T) {
		_, err := Build(ButtonType("menu"), "main")
		assert.Error(t, err)
	})
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Gel Manicure", "Gel_Manicure"},
		{"  spa   day  ", "spa_day"},
		{"hair&cut!", "haircut"},
		{"a__b___c", "a_b_c"},
		{"___", ""},
		{"already_safe-token:1", "already_safe-token:1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Sanitize(tt.input))
	}
}

func TestTruncate(t *testing.T) {
	t.Run("ShortensContextOnly", func(t *testing.T) {
		long := "slot_" + strings.Repeat("a", 300)
		out, ok := Truncate(long, 40)
		require.True(t, ok)
		assert.Len(t, out, 40)
		assert.True(t, strings.HasPrefix(out, "slot_"))
		assert.True(t, Validate(out, 40))
	})

	t.Run("FitsUnchanged", func(t *testing.T) {
		out, ok := Truncate("nav_back", MaxLength)
		require.True(t, ok)
		assert.Equal(t, "nav_back", out)
	})

	t.Run("PrefixDoesNotFit", func(t *testing.T) {
		_, ok := Truncate("waitlist_"+strings.Repeat("a", 50), 8)
		assert.False(t, ok)
	})
}
