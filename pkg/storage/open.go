package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Variants accepted by Open.
const (
	VariantWeb    = "web"
	VariantMobile = "mobile"
	VariantMemory = "memory"
	VariantNone   = "none"
)

// KV backends accepted for the mobile variant.
const (
	KVSQLite = "sqlite"
	KVRQLite = "rqlite"
	KVOlric  = "olric"
	KVMemory = "memory"
)

// Options selects and configures an adapter variant.
type Options struct {
	Variant    string
	Dir        string
	Passphrase string

	KV         string
	SQLitePath string
	RQLiteDSN  string
	Olric      OlricConfig
}

// Open builds the adapter described by opts. The returned close function
// releases backend resources and is never nil.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Adapter, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nop := func() error { return nil }

	switch opts.Variant {
	case VariantWeb, "":
		return OpenWeb(opts.Dir, logger), nop, nil
	case VariantMemory:
		return NewWebAdapter(NewMemoryStore(), logger), nop, nil
	case VariantNone:
		return NewNoop(), nop, nil
	case VariantMobile:
		return openMobile(ctx, opts, logger)
	default:
		return nil, nop, fmt.Errorf("unknown storage variant %q", opts.Variant)
	}
}

func openMobile(ctx context.Context, opts Options, logger *zap.Logger) (Adapter, func() error, error) {
	nop := func() error { return nil }

	secrets, err := OpenEncryptedFileStore(opts.Dir, opts.Passphrase)
	if err != nil {
		return nil, nop, fmt.Errorf("failed to open secret store: %w", err)
	}

	switch opts.KV {
	case KVSQLite, "":
		path := opts.SQLitePath
		if path == "" {
			dir := opts.Dir
			if dir == "" {
				if dir, err = DefaultDir(); err != nil {
					return nil, nop, err
				}
			}
			path = filepath.Join(dir, "session.db")
		}
		kv, err := OpenSQLiteKV(ctx, path)
		if err != nil {
			return nil, nop, err
		}
		return NewMobileAdapter(secrets, kv, logger), kv.Close, nil
	case KVRQLite:
		kv, err := OpenRQLiteKV(ctx, opts.RQLiteDSN)
		if err != nil {
			return nil, nop, err
		}
		return NewMobileAdapter(secrets, kv, logger), kv.Close, nil
	case KVOlric:
		kv, err := NewOlricKV(opts.Olric, logger)
		if err != nil {
			return nil, nop, err
		}
		return NewMobileAdapter(secrets, kv, logger), func() error { return kv.Close(context.Background()) }, nil
	case KVMemory:
		return NewMobileAdapter(secrets, NewMemoryStore(), logger), nop, nil
	default:
		return nil, nop, fmt.Errorf("unknown kv backend %q", opts.KV)
	}
}
