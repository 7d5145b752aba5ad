package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/dmriver/taskhub/internal/domain/user"
)

// AdminPolicy decides the role of a newly registered user. It is
// injected into the registration handler so deployments can swap the
// secret-code scheme for an allow-list or invite service without
// touching the handler.
type AdminPolicy interface {
	RoleFor(secretCode string) user.Role
}

// SecretCodePolicy grants admin when the supplied code matches a
// configured one, after trimming and case-folding. An empty configured
// code never matches anything.
type SecretCodePolicy struct {
	code string
}

func NewSecretCodePolicy(code string) *SecretCodePolicy {
	return &SecretCodePolicy{code: normalizeCode(code)}
}

func (p *SecretCodePolicy) RoleFor(secretCode string) user.Role {
	if p.code == "" {
		return user.RoleUser
	}

	supplied := normalizeCode(secretCode)

	if len(supplied) == len(p.code) &&
		subtle.ConstantTimeCompare([]byte(supplied), []byte(p.code)) == 1 {
		return user.RoleAdmin
	}

	return user.RoleUser
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
