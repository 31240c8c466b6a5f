package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	olriclib "github.com/olric-data/olric"
	"go.uber.org/zap"
)

// DefaultOlricDMap is the distributed map used when none is configured.
const DefaultOlricDMap = "fayol-session"

// OlricConfig holds configuration for the Olric-backed KVStore.
type OlricConfig struct {
	// Servers is a list of Olric server addresses (e.g., ["localhost:3320"])
	// If empty, defaults to ["localhost:3320"]
	Servers []string `yaml:"servers"`

	// DMap is the distributed map name. Defaults to DefaultOlricDMap.
	DMap string `yaml:"dmap"`

	// Timeout bounds each operation. Defaults to 10 seconds.
	Timeout time.Duration `yaml:"timeout"`
}

// OlricKV is a KVStore backed by an Olric distributed map, so several
// processes can share one session.
type OlricKV struct {
	client  olriclib.Client
	dm      olriclib.DMap
	timeout time.Duration
	logger  *zap.Logger
}

var _ KVStore = (*OlricKV)(nil)

// NewOlricKV connects to the cluster and opens the configured DMap.
func NewOlricKV(cfg OlricConfig, logger *zap.Logger) (*OlricKV, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	servers := cfg.Servers
	if len(servers) == 0 {
		servers = []string{"localhost:3320"}
	}
	name := cfg.DMap
	if name == "" {
		name = DefaultOlricDMap
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	client, err := olriclib.NewClusterClient(servers)
	if err != nil {
		return nil, fmt.Errorf("failed to create Olric cluster client: %w", err)
	}
	dm, err := client.NewDMap(name)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("failed to open DMap %q: %w", name, err)
	}

	logger.Info("Olric session store ready",
		zap.Strings("servers", servers),
		zap.String("dmap", name),
	)
	return &OlricKV{client: client, dm: dm, timeout: timeout, logger: logger}, nil
}

func (o *OlricKV) GetValue(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	gr, err := o.dm.Get(ctx, key)
	if errors.Is(err, olriclib.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key from olric: %w", err)
	}
	val, err := gr.String()
	if err != nil {
		return "", fmt.Errorf("failed to decode olric value: %w", err)
	}
	return val, nil
}

func (o *OlricKV) SetValue(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.dm.Put(ctx, key, value); err != nil {
		return fmt.Errorf("failed to put key to olric: %w", err)
	}
	return nil
}

func (o *OlricKV) DeleteValue(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if _, err := o.dm.Delete(ctx, key); err != nil && !errors.Is(err, olriclib.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key from olric: %w", err)
	}
	return nil
}

// Close closes the cluster client.
func (o *OlricKV) Close(ctx context.Context) error {
	if o.client == nil {
		return nil
	}
	return o.client.Close(ctx)
}
