package waitlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	cases := map[string]bool{
		"a@b.com":      true,
		"@":            true,
		" x@y ":        true,
		"":             false,
		"not-an-email": false,
	}

	for email, want := range cases {
		assert.Equal(t, want, IsValidEmail(email), email)
	}
}
