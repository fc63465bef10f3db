package token

import (
	"strings"
)

// Token describes immutable reference data for a tracked asset.
type Token struct {
	Address  string
	Symbol   string
	Decimals int32
}

// Unknown is the fallback entry returned for unregistered addresses.
var Unknown = Token{Symbol: "Unknown", Decimals: 18}

// Registry maps lowercase addresses to token metadata.
type Registry struct {
	byAddress map[string]Token
}

// NewRegistry builds a registry from static token entries.
func NewRegistry(tokens []Token) *Registry {
	byAddress := make(map[string]Token, len(tokens))
	for _, t := range tokens {
		byAddress[strings.ToLower(t.Address)] = t
	}
	return &Registry{byAddress: byAddress}
}

// Lookup resolves an address to token metadata. Unregistered addresses
// resolve to the Unknown fallback rather than an error.
func (r *Registry) Lookup(address string) Token {
	if t, ok := r.byAddress[strings.ToLower(address)]; ok {
		return t
	}
	fallback := Unknown
	fallback.Address = address
	return fallback
}

// All returns every registered token in unspecified order.
func (r *Registry) All() []Token {
	tokens := make([]Token, 0, len(r.byAddress))
	for _, t := range r.byAddress {
		tokens = append(tokens, t)
	}
	return tokens
}
