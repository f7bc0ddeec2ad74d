package service

import (
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-autoplayer/identity"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	"github.com/google/uuid"
)

// TokenTTL is the lifetime of an issued access token.
const TokenTTL = 24 * time.Hour

var ErrInvalidCredentials = errors.New("invalid username or password")

// Auth registers operators and issues their access tokens.
type Auth struct {
	operatorRepo i.OperatorRepo
	tokenizer    i.Tokenizer
}

var _ i.Authenticator = &Auth{}

// NewAuth creates an Auth service.
func NewAuth(r i.OperatorRepo, t i.Tokenizer) (*Auth, error) {
	if r == nil || t == nil {
		return nil, ErrMissingDependency
	}
	return &Auth{
		operatorRepo: r,
		tokenizer:    t,
	}, nil
}

// Register creates an operator allowed to control games of lobby.
func (a *Auth) Register(username, password, lobby string) error {
	operator, err := identity.NewOperator(identity.OperatorConfig{
		ID:            uuid.New(),
		Username:      username,
		PlainPassword: password,
		Lobby:         lobby,
	})
	if err != nil {
		return err
	}

	return a.operatorRepo.Save(operator)
}

func (a *Auth) SignIn(username, password string) (*identity.Operator, string, error) {
	operator, err := a.operatorRepo.ByUsername(username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !operator.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.tokenizer.Generate(map[string]interface{}{
		"operatorID": operator.ID,
		"username":   operator.Username,
		"lobby":      operator.Lobby,
	}, TokenTTL)
	if err != nil {
		return nil, "", err
	}

	return operator, token, nil
}
