// Package config loads the service configuration from YAML with environment
// overrides for the handful of values that differ per deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "60s" / "2m" strings.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full service configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Log     Log     `yaml:"log"`
	ZKProof ZKProof `yaml:"zkproof"`
	Oracle  Oracle  `yaml:"oracle"`
	Index   Index   `yaml:"index"`
}

type Server struct {
	Listen          string   `yaml:"listen"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type ZKProof struct {
	Curve              string   `yaml:"curve"`
	CapacityLog2       int      `yaml:"capacity_log2"`
	CommitmentScheme   string   `yaml:"commitment_scheme"`
	RangeCheckStrategy string   `yaml:"range_check_strategy"`
	WarmUp             bool     `yaml:"warm_up"`
	PoolWorkers        int      `yaml:"pool_workers"`
	PoolQueueSize      int      `yaml:"pool_queue_size"`
	JobTimeout         Duration `yaml:"job_timeout"`
}

type Oracle struct {
	Symbol            string   `yaml:"symbol"`
	TTL               Duration `yaml:"ttl"`
	BroadcastInterval Duration `yaml:"broadcast_interval"`
}

type Index struct {
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Listen:          ":8080",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(2 * time.Minute), // sync proving can be slow
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Log: Log{Level: "info", JSON: true},
		ZKProof: ZKProof{
			Curve:              "bn254",
			CapacityLog2:       18,
			CommitmentScheme:   "poseidon2",
			RangeCheckStrategy: "lookup",
			WarmUp:             true,
			PoolWorkers:        2,
			PoolQueueSize:      64,
			JobTimeout:         Duration(2 * time.Minute),
		},
		Oracle: Oracle{
			Symbol:            "ETH",
			TTL:               Duration(60 * time.Second),
			BroadcastInterval: Duration(15 * time.Second),
		},
		Index: Index{Dir: ""},
	}
}

// Load reads path (optional), layers environment overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PRIVLEND_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("PRIVLEND_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PRIVLEND_INDEX_DIR"); v != "" {
		cfg.Index.Dir = v
	}
}

// Validate rejects configurations the services would only reject later, with
// worse messages.
func (c Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("config: server.listen must not be empty")
	}
	if c.ZKProof.CapacityLog2 < 0 || c.ZKProof.CapacityLog2 > 28 {
		return fmt.Errorf("config: zkproof.capacity_log2 %d out of range [0,28]", c.ZKProof.CapacityLog2)
	}
	if c.ZKProof.PoolWorkers < 0 {
		return fmt.Errorf("config: zkproof.pool_workers must not be negative")
	}
	if c.Oracle.Symbol == "" {
		return fmt.Errorf("config: oracle.symbol must not be empty")
	}
	if c.Oracle.TTL < 0 || c.Oracle.BroadcastInterval < 0 {
		return fmt.Errorf("config: oracle durations must not be negative")
	}
	return nil
}
