package waitlist

import "strings"

// IsValidEmail is deliberately loose: any non-empty string containing "@".
// It neither trims nor lowercases, so "A@b.com" and "a@b.com" are distinct members.
func IsValidEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}
