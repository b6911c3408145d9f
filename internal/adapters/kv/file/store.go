package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/mvoss/teampulse-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	configFileName  = "config.toml"
	storePathKey    = "store.path"
	storeFileMode   = 0o600
	storeDirMode    = 0o700
	storeConfigDir  = ".teampulse"
	storeFileName   = "store.json"
	tempFilePattern = ".store-*.json.tmp"
)

// Store persists string-keyed JSON values in one versioned file, replaced
// atomically on every write. Writers within the same process serialize on a
// per-path lock; cross-process writers are not coordinated, matching the
// single-writer deployment this store is built for.
type Store struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.KeyValueStore = (*Store)(nil)

func NewStore(cfg *viper.Viper) (*Store, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, storeConfigDir)
	defaultPath := filepath.Join(configDir, storeFileName)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)
	cfg.SetDefault(storePathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := writeDefaultConfig(configDir, defaultPath); err != nil {
			return nil, err
		}
	}

	storePath := cfg.GetString(storePathKey)
	if storePath == "" {
		return nil, errors.New("store path is empty")
	}
	storePath, err = normalizeStorePath(storePath)
	if err != nil {
		return nil, err
	}

	return &Store{path: storePath, mu: lockForPath(storePath)}, nil
}

// NewStoreAt opens a store at an explicit path, bypassing config resolution.
// Used for the scratch store and in tests.
func NewStoreAt(path string) (*Store, error) {
	normalized, err := normalizeStorePath(path)
	if err != nil {
		return nil, err
	}

	return &Store{path: normalized, mu: lockForPath(normalized)}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, err := s.readSchema()
	if err != nil {
		return nil, err
	}

	value, ok := schema.Entries[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	schema, err := s.readSchema()
	if err != nil {
		return err
	}
	schema.applyDefaults()
	schema.Entries[key] = json.RawMessage(value)

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.writeSchema(schema)
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, err := s.readSchema()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(schema.Entries))
	for key := range schema.Entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return keys, nil
}

func (s *Store) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			schema := fileSchema{}
			schema.applyDefaults()
			return schema, nil
		}
		return fileSchema{}, fmt.Errorf("read store file: %w", err)
	}

	var schema fileSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return fileSchema{}, fmt.Errorf("decode store file: %w", err)
	}
	if err := schema.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	schema.applyDefaults()

	return schema, nil
}

func (s *Store) writeSchema(schema fileSchema) error {
	schema.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(s.path), storeDirMode); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp store file: %w", err)
	}

	if err := tempFile.Chmod(storeFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp store file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(s.path, storeFileMode); err != nil {
		return fmt.Errorf("chmod store file: %w", err)
	}

	return nil
}

type defaultConfig struct {
	Store struct {
		Path string `toml:"path"`
	} `toml:"store"`
}

func writeDefaultConfig(configDir, storePath string) error {
	if err := os.MkdirAll(configDir, storeDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	cfg := defaultConfig{}
	cfg.Store.Path = storePath

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	configPath := filepath.Join(configDir, configFileName)
	if err := os.WriteFile(configPath, data, storeFileMode); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

func normalizeStorePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve store path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
