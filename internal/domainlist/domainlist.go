// Package domainlist holds normalized sender-domain sets used by the
// blocked, DKIM-exclusion and SPF-exclusion policies.
package domainlist

import (
	"net/mail"
	"sort"
	"strings"
)

// Separator splits list settings stored as a single string, e.g. "a.com|b.org".
const Separator = "|"

// Set is an immutable set of lowercase domain names
type Set struct {
	domains map[string]struct{}
}

// New creates a set from the given domains, normalizing case and whitespace
func New(domains ...string) Set {
	s := Set{domains: make(map[string]struct{}, len(domains))}
	for _, domain := range domains {
		domain = normalize(domain)
		if domain == "" {
			continue
		}
		s.domains[domain] = struct{}{}
	}
	return s
}

// Parse creates a set from a pipe-separated list
func Parse(list string) Set {
	return New(strings.Split(list, Separator)...)
}

// Contains reports whether domain is in the set
func (s Set) Contains(domain string) bool {
	if len(s.domains) == 0 {
		return false
	}
	_, ok := s.domains[normalize(domain)]
	return ok
}

// Len returns the number of domains in the set
func (s Set) Len() int {
	return len(s.domains)
}

// Domains returns the sorted members of the set
func (s Set) Domains() []string {
	out := make([]string, 0, len(s.domains))
	for domain := range s.domains {
		out = append(out, domain)
	}
	sort.Strings(out)
	return out
}

// DomainOf extracts the lowercase domain of a sender address. Display-name
// forms ("Jane <jane@example.com>") are accepted. Returns "" when the address
// has no domain part.
func DomainOf(address string) string {
	address = strings.TrimSpace(address)
	if parsed, err := mail.ParseAddress(address); err == nil {
		address = parsed.Address
	}

	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return normalize(strings.TrimRight(address[at+1:], ">"))
}

func normalize(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
