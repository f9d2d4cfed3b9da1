package accounts

import (
	"path/filepath"
	"strings"
)

// Account is a budget account that exports are booked into.
type Account struct {
	Name   string // "default", "shared", "second"
	Prefix string // export filename prefix
	ID     string // budgeting API account id
}

// Router picks the account an export file belongs to.
type Router struct {
	fallback Account
	rules    []Account
}

// NewRouter creates a Router that checks rules in order and falls back to
// fallback when no rule prefix matches.
func NewRouter(fallback Account, rules ...Account) *Router {
	return &Router{fallback: fallback, rules: rules}
}

// Resolve returns the account whose prefix starts the base name of filename.
func (r *Router) Resolve(filename string) Account {
	base := filepath.Base(filename)
	for _, a := range r.rules {
		if a.Prefix != "" && strings.HasPrefix(base, a.Prefix) {
			return a
		}
	}
	return r.fallback
}

// All returns every account, rules first and the fallback last.
func (r *Router) All() []Account {
	out := make([]Account, 0, len(r.rules)+1)
	out = append(out, r.rules...)
	return append(out, r.fallback)
}

// Prefixes returns the filename prefixes used to discover exports, with
// the fallback first.
func (r *Router) Prefixes() []string {
	var out []string
	if r.fallback.Prefix != "" {
		out = append(out, r.fallback.Prefix)
	}
	for _, a := range r.rules {
		if a.Prefix != "" {
			out = append(out, a.Prefix)
		}
	}
	return out
}
