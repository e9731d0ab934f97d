package postprocessors

import (
	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in splitters with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(string(domain.SplitterRecursive), buildRecursive)
	r.Register(string(domain.SplitterFixed), buildFixed)
}

// buildRecursive creates the boundary-aware chunker.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildRecursive(cfg map[string]any) (driven.Splitter, error) {
	return chunker.New(chunkerOptions(cfg)...)
}

// buildFixed creates a chunker that cuts at exact window boundaries.
func buildFixed(cfg map[string]any) (driven.Splitter, error) {
	return chunker.New(append(chunkerOptions(cfg), chunker.WithFixedWindows())...)
}

func chunkerOptions(cfg map[string]any) []chunker.Option {
	var opts []chunker.Option
	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return opts
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
