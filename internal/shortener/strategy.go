package shortener

import (
	"github.com/serroba/slugly/internal/base62"
)

// Strategy derives the slug for a newly reserved identifier.
type Strategy interface {
	Slug(id ID) Slug
}

// CodeGenerator generates random short codes.
type CodeGenerator func() string

// IdentityStrategy derives the slug from the identifier, so slug and id map
// to each other deterministically.
type IdentityStrategy struct{}

// NewIdentityStrategy creates the base62 identity strategy.
func NewIdentityStrategy() *IdentityStrategy {
	return &IdentityStrategy{}
}

func (s *IdentityStrategy) Slug(id ID) Slug {
	return Slug(base62.Encode(uint64(id)))
}

// TokenStrategy ignores the identifier and returns a random code.
// Uniqueness relies on the storage constraint plus retry.
type TokenStrategy struct {
	generateCode CodeGenerator
}

// NewTokenStrategy creates a random-token strategy.
func NewTokenStrategy(generator CodeGenerator) *TokenStrategy {
	return &TokenStrategy{generateCode: generator}
}

func (s *TokenStrategy) Slug(_ ID) Slug {
	return Slug(s.generateCode())
}
