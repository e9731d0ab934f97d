package normalisers

import (
	"context"
	"fmt"
	"mime"
	"sort"
	"strings"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry selects a normaliser by MIME type.
// Types without a registered normaliser fall back to the text fallback when
// they are text/*; anything else is domain.ErrUnsupportedType.
type Registry struct {
	byMIME   map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
// Later normalisers override earlier ones for the same MIME type.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byMIME: make(map[string]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser for each of its MIME types.
func (r *Registry) Register(n driven.Normaliser) {
	for _, m := range n.SupportedMIMETypes() {
		r.byMIME[m] = n
	}
}

// SetTextFallback sets the normaliser used for unregistered text/* types.
func (r *Registry) SetTextFallback(n driven.Normaliser) {
	r.fallback = n
}

// SupportedMIMETypes returns every registered MIME type, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIME))
	for m := range r.byMIME {
		types = append(types, m)
	}
	sort.Strings(types)
	return types
}

// Normalise dispatches raw to the normaliser for its MIME type.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: raw document is nil", domain.ErrInvalidInput)
	}

	n, err := r.lookup(raw.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Locator, err)
	}
	return n.Normalise(ctx, raw)
}

func (r *Registry) lookup(mimeType string) (driven.Normaliser, error) {
	base := BaseMIMEType(mimeType)
	if n, ok := r.byMIME[base]; ok {
		return n, nil
	}
	if r.fallback != nil && strings.HasPrefix(base, "text/") {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, mimeType)
}

// BaseMIMEType strips parameters such as charset and lowercases the type.
func BaseMIMEType(mimeType string) string {
	if base, _, err := mime.ParseMediaType(mimeType); err == nil {
		return base
	}
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
