package i

import (
	"github.com/beka-birhanu/vinom-autoplayer/identity"
)

// Authenticator registers and signs in monitor operators.
type Authenticator interface {
	Register(username, password, lobby string) error
	SignIn(username, password string) (*identity.Operator, string, error)
}
