package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultLogLevel = "info"

	configFile = "config.json"
	logFile    = "abistudio.log"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.abistudio.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".abistudio")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = Duration(DefaultReceiptPollInterval)
	}
	if cfg.GasLimitFallback == 0 {
		cfg.GasLimitFallback = GasLimitContractCall
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC appends an RPC endpoint to the failover list.
func (c *Config) AddRPC(url string) error {
	if slices.Contains(c.RPCURLs, url) {
		return fmt.Errorf("RPC %s already configured", url)
	}
	c.RPCURLs = append(c.RPCURLs, url)
	return nil
}

// RemoveRPC removes an RPC endpoint from the failover list.
func (c *Config) RemoveRPC(url string) error {
	idx := slices.Index(c.RPCURLs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not configured", url)
	}
	c.RPCURLs = slices.Delete(c.RPCURLs, idx, idx+1)
	return nil
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// LogPath returns the log file path, defaulting to <dir>/abistudio.log.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.configDir, logFile)
}

// setters maps `config set` keys to their parsers.
var setters = map[string]func(c *Config, v string) error{
	"rpc_urls": func(c *Config, v string) error {
		var urls []string
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		c.RPCURLs = urls
		return nil
	},
	"key_ref": func(c *Config, v string) error {
		c.KeyRef = v
		return nil
	},
	"log_level": func(c *Config, v string) error {
		switch v {
		case "debug", "info", "warn", "error":
			c.LogLevel = v
			return nil
		}
		return fmt.Errorf("invalid log level %q (debug|info|warn|error)", v)
	},
	"log_file": func(c *Config, v string) error {
		c.LogFile = v
		return nil
	},
	"strict_ordering": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("strict_ordering must be true or false")
		}
		c.StrictOrdering = b
		return nil
	},
	"receipt_poll_interval": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("receipt_poll_interval must be a positive duration like 2s")
		}
		c.ReceiptPollInterval = Duration(d)
		return nil
	},
	"gas_limit_fallback": func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return fmt.Errorf("gas_limit_fallback must be a positive integer")
		}
		c.GasLimitFallback = n
		return nil
	},
}

// Set updates a single key by name. Unknown keys are rejected.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(c, value)
}

// Keys returns the settable config keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		LogLevel:            defaultLogLevel,
		ReceiptPollInterval: Duration(DefaultReceiptPollInterval),
		GasLimitFallback:    GasLimitContractCall,
		configDir:           dir,
	}
}
