package service

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"github.com/gatherhub/event-management-api/internal/core/ports"
)

const (
	guestDomain  = "guest.temporary"
	specialChars = "!@#$%^&*"
	digitChars   = "0123456789"
	letterChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// GenerateGuestCredentials produces a random guest identity: a "guest_"
// username with an 8-char hex suffix, a matching throwaway email, and a
// password that satisfies the account password policy (one special
// character, one digit, six letters, shuffled).
//
// Pure generation; collision handling (retry on duplicate) is the caller's
// responsibility.
func GenerateGuestCredentials() ports.GuestCredentials {
	username := "guest_" + randomHex(4)
	return ports.GuestCredentials{
		Username: username,
		Email:    username + "@" + guestDomain,
		Password: generateGuestPassword(),
	}
}

func generateGuestPassword() string {
	chars := make([]byte, 0, 8)
	chars = append(chars, specialChars[randIndex(len(specialChars))])
	chars = append(chars, digitChars[randIndex(len(digitChars))])
	for i := 0; i < 6; i++ {
		chars = append(chars, letterChars[randIndex(len(letterChars))])
	}

	// Fisher-Yates so the special/digit positions are not predictable.
	for i := len(chars) - 1; i > 0; i-- {
		j := randIndex(i + 1)
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}

func randomHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func randIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
