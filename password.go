package mailtm

import (
	"math/rand/v2"
	"strings"

	"github.com/oklog/ulid/v2"
)

// DefaultPasswordLength is the length of generated mailbox passwords.
const DefaultPasswordLength = 10

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePassword returns length characters drawn uniformly and
// independently from [A-Za-z0-9]. It is meant for throwaway accounts and
// is not suitable for anything that needs a cryptographic secret.
func GeneratePassword(length int) string {
	if length <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(passwordAlphabet[rand.IntN(len(passwordAlphabet))])
	}
	return b.String()
}

// NewLocalPart returns a fresh, lowercase local part for a throwaway address.
func NewLocalPart() string {
	return strings.ToLower(ulid.Make().String())
}

// NewAddress returns a fresh throwaway address under domain.
func NewAddress(domain string) string {
	return NewLocalPart() + "@" + domain
}
