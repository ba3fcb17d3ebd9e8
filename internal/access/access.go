// Package access holds the set of principals allowed to run privileged
// registry operations.
package access

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
)

type Principals struct {
	owners map[string]struct{}
}

// NewPrincipals builds the owner set; names are trimmed and blanks dropped
func NewPrincipals(owners []string) *Principals {
	p := &Principals{owners: make(map[string]struct{}, len(owners))}
	for _, owner := range owners {
		if trimmed := strings.TrimSpace(owner); trimmed != "" {
			p.owners[trimmed] = struct{}{}
		}
	}
	return p
}

func (p *Principals) IsOwner(caller string) bool {
	_, ok := p.owners[strings.TrimSpace(caller)]
	return ok
}

// RequireOwner returns domain.ErrUnauthorized for non-owners
func (p *Principals) RequireOwner(caller, operation string) error {
	if !p.IsOwner(caller) {
		return fmt.Errorf("%s by %q: %w", operation, caller, domain.ErrUnauthorized)
	}
	return nil
}

func (p *Principals) Len() int {
	return len(p.owners)
}
