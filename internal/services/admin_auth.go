package services

import (
	"crypto/subtle"

	"github.com/AnshRaj112/emotional-diary-backend/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

// AdminGate checks the shared admin secret that guards destructive
// operations. A hash (argon2id or bcrypt), when configured, wins over the
// plain secret. With neither configured every check fails.
type AdminGate struct {
	password []byte
	hash     []byte
}

func NewAdminGate(password, passwordHash string) *AdminGate {
	g := &AdminGate{}
	if password != "" {
		g.password = []byte(password)
	}
	if passwordHash != "" {
		g.hash = []byte(passwordHash)
	}
	return g
}

// Configured reports whether any admin secret is set.
func (g *AdminGate) Configured() bool {
	return len(g.password) > 0 || len(g.hash) > 0
}

// Verify reports whether candidate matches the configured secret.
func (g *AdminGate) Verify(candidate string) bool {
	if candidate == "" {
		return false
	}
	if len(g.hash) > 0 {
		if utils.IsArgon2Hash(string(g.hash)) {
			ok, err := utils.VerifySecret(candidate, string(g.hash))
			return err == nil && ok
		}
		return bcrypt.CompareHashAndPassword(g.hash, []byte(candidate)) == nil
	}
	if len(g.password) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(g.password, []byte(candidate)) == 1
}
