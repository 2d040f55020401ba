package test

import (
	pkgAuth "github.com/polkiloo/foodbridge/internal/pkg/auth"
)

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(pkgAuth.Actor) (string, error)
	ParseFn func(string) (pkgAuth.Actor, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(actor pkgAuth.Actor) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(actor)
	}
	return "token", nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (pkgAuth.Actor, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Actor{ID: 1, Role: pkgAuth.RoleDonor}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// ActorParserStub implements the middleware token parsing contract.
type ActorParserStub struct {
	Actor   pkgAuth.Actor
	Err     error
	ParseFn func(string) (pkgAuth.Actor, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s ActorParserStub) ParseToken(token string) (pkgAuth.Actor, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return pkgAuth.Actor{}, s.Err
	}
	return s.Actor, nil
}

// ActorTokens maps bearer tokens to actors.
type ActorTokens map[string]pkgAuth.Actor

// ParseToken resolves the actor registered for token.
func (m ActorTokens) ParseToken(token string) (pkgAuth.Actor, error) {
	actor, ok := m[token]
	if !ok {
		return pkgAuth.Actor{}, pkgAuth.ErrInvalidToken
	}
	return actor, nil
}

var _ pkgAuth.Strategy = StrategyStub{}
