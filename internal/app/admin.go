package app

import "golang.org/x/crypto/bcrypt"

// AdminAuth verifies the administrator credential. When a bcrypt hash is
// configured it wins; the plaintext fallback exists for development only.
type AdminAuth struct {
	hash  string
	plain string
}

func NewAdminAuth(hash, plain string) AdminAuth {
	return AdminAuth{hash: hash, plain: plain}
}

func (a AdminAuth) Verify(password string) bool {
	if a.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.hash), []byte(password)) == nil
	}
	return a.plain != "" && password == a.plain
}
