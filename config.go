package offsync

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables recognized by
// LoadOptions: OFFSYNC_SYNC_URL becomes sync_url, and so on.
const envPrefix = "OFFSYNC_"

// fileOptions is the on-disk rendering of the configuration surface.
// retry_delay is in milliseconds, matching the engine default of 5000.
type fileOptions struct {
	Namespaces       []string `koanf:"namespaces"`
	DefaultNamespace string   `koanf:"default_namespace"`
	SyncURL          string   `koanf:"sync_url"`
	MaxRetries       int      `koanf:"max_retries"`
	RetryDelayMillis int      `koanf:"retry_delay"`
	BatchSize        int      `koanf:"batch_size"`
	EncryptionKey    string   `koanf:"encryption_key"`
	DropCorrupt      bool     `koanf:"drop_corrupt"`
}

// LoadOptions reads Options from a YAML file, then overlays environment
// variables (highest priority). An empty path skips the file layer so a
// host can configure the engine from the environment alone.
func LoadOptions(path string) (Options, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Options{}, fmt.Errorf("offsync: load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Options{}, fmt.Errorf("offsync: load environment: %w", err)
	}

	var fo fileOptions
	if err := k.Unmarshal("", &fo); err != nil {
		return Options{}, fmt.Errorf("offsync: unmarshal config: %w", err)
	}

	opts := Options{
		Namespaces:       fo.Namespaces,
		DefaultNamespace: fo.DefaultNamespace,
		SyncURL:          fo.SyncURL,
		MaxRetries:       fo.MaxRetries,
		RetryDelay:       time.Duration(fo.RetryDelayMillis) * time.Millisecond,
		BatchSize:        fo.BatchSize,
		EncryptionKey:    fo.EncryptionKey,
		DropCorrupt:      fo.DropCorrupt,
	}
	if opts.SyncURL == "" {
		return Options{}, fmt.Errorf("offsync: sync_url is required")
	}
	return opts, nil
}
