package cli

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/scatter/internal/server"
	pkgio "github.com/matzehuels/scatter/pkg/io"
	"github.com/matzehuels/scatter/pkg/pipeline"
)

// settingsFile is the name of the settings file inside configDir.
const settingsFile = "config.toml"

// Settings is the persisted CLI configuration. Generate holds the generator
// options used when a flag is not given; Server configures `scatter serve`
// and the cache every command shares.
//
//	[generate]
//	width = 800
//	height = 800
//	patterns = ["solid", "dots"]
//
//	[server]
//	addr = "127.0.0.1:8080"
//	store = "scatter.db"
//	cache = "redis://localhost:6379/0"
type Settings struct {
	Generate pipeline.Options `toml:"generate"`
	Server   ServerSettings   `toml:"server"`
}

// ServerSettings configures the HTTP server and the shared stores.
type ServerSettings struct {
	Addr  string `toml:"addr,omitempty"`
	Store string `toml:"store,omitempty"`
	Cache string `toml:"cache,omitempty"`
}

// settingsPath returns the settings file path.
func settingsPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, settingsFile), nil
}

// loadSettings reads the settings file and applies environment overrides.
// A missing file yields default settings.
func loadSettings() (*Settings, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}
	s, err := readSettings(path)
	if err != nil {
		return nil, err
	}
	s.applyEnv()
	return s, nil
}

func readSettings(path string) (*Settings, error) {
	s := &Settings{}
	if _, err := toml.DecodeFile(path, s); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	return s, nil
}

// applyEnv overrides server settings from SCATTER_ADDR, SCATTER_STORE and
// SCATTER_CACHE.
func (s *Settings) applyEnv() {
	if v := os.Getenv(envAddr); v != "" {
		s.Server.Addr = v
	}
	if v := os.Getenv(envStore); v != "" {
		s.Server.Store = v
	}
	if v := os.Getenv(envCache); v != "" {
		s.Server.Cache = v
	}
}

// addr returns the configured listen address or the server default.
func (s *Settings) addr() string {
	if s.Server.Addr != "" {
		return s.Server.Addr
	}
	return server.DefaultAddr
}

// saveSettings writes s to the settings file. Environment overrides are not
// persisted.
func saveSettings(s *Settings) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	file, err := readSettings(path)
	if err != nil {
		return err
	}
	file.Generate = s.Generate
	file.Generate.Refresh = false

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(file); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return pkgio.WriteFile(path, buf.Bytes())
}

// resetSettings removes the settings file. A missing file is not an error.
func resetSettings() (string, error) {
	path, err := settingsPath()
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove settings: %w", err)
	}
	return path, nil
}
