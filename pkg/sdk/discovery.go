package sdk

import (
	"context"
	"fmt"

	"github.com/celerix-dev/mediaid/internal/engine"
	"github.com/celerix-dev/mediaid/internal/vault"
	pkgengine "github.com/celerix-dev/mediaid/pkg/engine"
)

// StoreOptions selects and configures a record store backend.
type StoreOptions struct {
	// Backend is "sqlite" (default) or "memory".
	Backend string
	// Path is the SQLite file, created if absent.
	Path string
	// VaultKey, when set, seals medical free text at rest. SQLite only.
	VaultKey []byte
}

// OpenStore returns the store described by opts.
// The caller doesn't care which backend it got.
func OpenStore(ctx context.Context, opts StoreOptions) (RecordStore, error) {
	switch opts.Backend {
	case "memory":
		if len(opts.VaultKey) > 0 {
			return nil, fmt.Errorf("vault key is not supported by the memory backend")
		}
		return pkgengine.NewMemStore(nil), nil
	case "", "sqlite":
		sealer, err := vault.NewSealer(opts.VaultKey)
		if err != nil {
			return nil, err
		}
		store, err := engine.Open(ctx, opts.Path, engine.WithSealer(sealer))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
