package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// StorageBackend names a board store implementation.
type StorageBackend string

const (
	StorageBackendSQLite StorageBackend = "sqlite"
	StorageBackendRedis  StorageBackend = "redis"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	Server   ServerConfig   `toml:"server"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type StorageConfig struct {
	Backend StorageBackend `toml:"backend"`
	Key     string         `toml:"key"`
}

type RedisConfig struct {
	URL         string `toml:"url"`
	Prefix      string `toml:"prefix"`
	ChangeLimit int    `toml:"change_limit"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	TaskColumn     string         `toml:"task_column"`
	ColumnCounter  string         `toml:"column_counter"` // max_suffix | column_count
	DropTarget     string         `toml:"drop_target"`    // ancestor | strict
	DefaultColumns []ColumnConfig `toml:"default_columns"`
}

type ColumnConfig struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

type ServerConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type KeyConfig struct {
	ActivityLog string `toml:"activity_log"`
	Preview     string `toml:"preview"`
	Yank        string `toml:"yank"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "todo", Name: "To Do"},
		{ID: "inProgress", Name: "In Progress"},
		{ID: "done", Name: "Done"},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Storage: StorageConfig{
			Backend: StorageBackendSQLite,
			Key:     "kanbanBoard",
		},
		Redis: RedisConfig{
			URL:         "redis://127.0.0.1:6379/0",
			Prefix:      "tavla:",
			ChangeLimit: 500,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".tavla/log",
			},
		},
		Board: BoardConfig{
			TaskColumn:     "todo",
			ColumnCounter:  "max_suffix",
			DropTarget:     "ancestor",
			DefaultColumns: defaultColumns(),
		},
		Server: ServerConfig{
			Bind:        "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Keys: KeyConfig{
			ActivityLog: "g",
			Preview:     "i",
			Yank:        "y",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	// A file that lists default columns replaces the defaults rather than merging by index.
	var probe struct {
		Board struct {
			DefaultColumns []ColumnConfig `toml:"default_columns"`
		} `toml:"board"`
	}
	if err := toml.Unmarshal(content, &probe); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if probe.Board.DefaultColumns != nil {
		cfg.Board.DefaultColumns = nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch StorageBackend(strings.TrimSpace(strings.ToLower(string(c.Storage.Backend)))) {
	case StorageBackendSQLite:
	case StorageBackendRedis:
		if strings.TrimSpace(c.Redis.URL) == "" {
			return errors.New("redis.url is required when storage.backend is redis")
		}
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key is required")
	}
	if c.Redis.ChangeLimit < 0 {
		return errors.New("redis.change_limit must be >= 0")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	switch strings.TrimSpace(strings.ToLower(c.Board.ColumnCounter)) {
	case "", "max_suffix", "column_count":
	default:
		return fmt.Errorf("invalid board.column_counter: %q", c.Board.ColumnCounter)
	}
	switch strings.TrimSpace(strings.ToLower(c.Board.DropTarget)) {
	case "", "ancestor", "strict":
	default:
		return fmt.Errorf("invalid board.drop_target: %q", c.Board.DropTarget)
	}

	if len(c.Board.DefaultColumns) == 0 {
		return errors.New("board.default_columns must include at least one column")
	}
	seenColumnID := map[string]struct{}{}
	for idx, column := range c.Board.DefaultColumns {
		id := strings.TrimSpace(column.ID)
		if id == "" {
			return fmt.Errorf("board.default_columns[%d].id is required", idx)
		}
		if strings.TrimSpace(column.Name) == "" {
			return fmt.Errorf("board.default_columns[%d].name is required", idx)
		}
		if _, ok := seenColumnID[id]; ok {
			return fmt.Errorf("board.default_columns[%d].id is duplicated: %s", idx, id)
		}
		seenColumnID[id] = struct{}{}
	}

	for name, endpoint := range map[string]string{"server.api_endpoint": c.Server.APIEndpoint, "server.mcp_endpoint": c.Server.MCPEndpoint} {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}

	return nil
}

// StorageBackendName returns the normalized backend name.
func (c Config) StorageBackendName() StorageBackend {
	return StorageBackend(strings.TrimSpace(strings.ToLower(string(c.Storage.Backend))))
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
