package auth

import (
	"context"
	"crypto/subtle"
)

// Verifier checks a username/password pair.
type Verifier interface {
	Verify(ctx context.Context, username, password string) bool
}

type Credential struct {
	Username string
	Password string
}

// StaticVerifier accepts a fixed set of credentials. Pairs with an empty
// username or password never match.
type StaticVerifier struct {
	creds []Credential
}

func NewStaticVerifier(creds ...Credential) *StaticVerifier {
	valid := make([]Credential, 0, len(creds))
	for _, c := range creds {
		if c.Username != "" && c.Password != "" {
			valid = append(valid, c)
		}
	}
	return &StaticVerifier{creds: valid}
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) bool {
	ok := false
	for _, c := range v.creds {
		u := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username))
		p := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password))
		if u&p == 1 {
			ok = true
		}
	}
	return ok
}

func (v *StaticVerifier) Len() int {
	return len(v.creds)
}
