package connectors

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

// Ensure Resolver implements the interface.
var _ driven.ConnectorRegistry = (*Resolver)(nil)

// Resolver dispatches a locator to the connector registered for its scheme.
type Resolver struct {
	byScheme map[string]driven.Connector
}

// NewResolver creates a resolver holding the given connectors.
func NewResolver(connectors ...driven.Connector) *Resolver {
	r := &Resolver{byScheme: make(map[string]driven.Connector)}
	for _, c := range connectors {
		r.Register(c)
	}
	return r
}

// Register adds a connector for each of its schemes.
func (r *Resolver) Register(c driven.Connector) {
	for _, s := range c.Schemes() {
		r.byScheme[strings.ToLower(s)] = c
	}
}

// Schemes returns all registered schemes, sorted.
func (r *Resolver) Schemes() []string {
	out := make([]string, 0, len(r.byScheme))
	for s := range r.byScheme {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Fetch retrieves locator with the connector for its scheme.
func (r *Resolver) Fetch(ctx context.Context, locator string) (*domain.RawDocument, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, fmt.Errorf("%w: locator is empty", domain.ErrInvalidInput)
	}

	scheme := Scheme(locator)
	c, ok := r.byScheme[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: no connector for scheme %q", domain.ErrUnsupportedType, scheme)
	}
	return c.Fetch(ctx, locator)
}

// Scheme returns the lower-cased scheme of locator, or "file" for bare and
// Windows drive paths.
func Scheme(locator string) string {
	u, err := url.Parse(locator)
	if err != nil || len(u.Scheme) <= 1 {
		return "file"
	}
	return strings.ToLower(u.Scheme)
}
