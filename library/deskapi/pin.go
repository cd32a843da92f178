package deskapi

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"net/http"

	"golang.org/x/crypto/argon2"
)

// PINHeader carries the desk PIN.
const PINHeader = "X-Desk-PIN"

const (
	pinLength      = 4
	saltLength     = 16
	argonTime      = 1
	argonMemoryKiB = 64 * 1024
	argonThreads   = 4
	argonKeyLength = 32
)

// ErrInvalidPIN is returned for a PIN that is not exactly four ASCII digits.
var ErrInvalidPIN = errors.New("pin must be exactly 4 digits")

// PINGate checks the shared desk PIN. Only a salted argon2id digest of the PIN is kept.
type PINGate struct {
	salt   []byte
	digest []byte
}

// NewPINGate creates a gate for pin.
func NewPINGate(pin string) (*PINGate, error) {
	if !IsValidPIN(pin) {
		return nil, ErrInvalidPIN
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	return &PINGate{
		salt:   salt,
		digest: digestPIN(pin, salt),
	}, nil
}

// IsValidPIN reports whether pin has the keypad format of four ASCII digits.
func IsValidPIN(pin string) bool {
	if len(pin) != pinLength {
		return false
	}

	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}

	return true
}

// Verify reports whether candidate is the desk PIN.
func (g *PINGate) Verify(candidate string) bool {
	if !IsValidPIN(candidate) {
		return false
	}

	return subtle.ConstantTimeCompare(digestPIN(candidate, g.salt), g.digest) == 1
}

func digestPIN(pin string, salt []byte) []byte {
	return argon2.IDKey([]byte(pin), salt, argonTime, argonMemoryKiB, argonThreads, argonKeyLength)
}

// requirePIN rejects requests without the desk PIN when a gate is configured.
func (h *Handler) requirePIN(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.pinGate != nil && !h.pinGate.Verify(r.Header.Get(PINHeader)) {
			h.pinRequiredResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
