package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds pipeline settings. Everything has a usable default so the
// tool runs without a config file; API keys fall back to environment
// variables so they stay out of the repo.
type Config struct {
	ResultsDir  string `yaml:"results_dir"`
	DatasetDir  string `yaml:"dataset_dir"`
	GroundTruth string `yaml:"ground_truth"`
	TimeoutSec  int    `yaml:"timeout"`
	TmpDir      string `yaml:"tmp_dir"`

	Docker struct {
		Enabled bool   `yaml:"enabled"`
		Image   string `yaml:"image"`
	} `yaml:"docker"`

	Etherscan struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"etherscan"`

	DeFi struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"defi"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.ResultsDir = "static_analysis_results"
	cfg.DatasetDir = filepath.Join("dataset", "solidity")
	cfg.GroundTruth = filepath.Join("dataset", "ground_truth.yaml")
	cfg.TimeoutSec = 600
	cfg.TmpDir = "tmp"
	cfg.Docker.Image = "ghcr.io/trailofbits/eth-security-toolbox:nightly"
	return cfg
}

// Load reads a YAML config file on top of the defaults. A missing path is
// not an error: defaults plus environment keys are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				applyEnv(&cfg)
				return cfg, nil
			}
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if cfg.Etherscan.APIKey == "" {
		cfg.Etherscan.APIKey = os.Getenv("ETHERSCAN_API_KEY")
	}
	if cfg.DeFi.APIKey == "" {
		cfg.DeFi.APIKey = os.Getenv("DEFI_API_KEY")
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// RawDir is where raw tool reports are written.
func (c Config) RawDir(tool string) string {
	return filepath.Join(c.ResultsDir, "raw", tool)
}

// ParsedDir is where normalized reports are written.
func (c Config) ParsedDir(tool string) string {
	return filepath.Join(c.ResultsDir, "parsed", tool)
}

// LogsDir is where run logs are written.
func (c Config) LogsDir() string {
	return filepath.Join(c.ResultsDir, "logs")
}

// EnsureDirectories creates the per-stage output tree.
func (c Config) EnsureDirectories() error {
	dirs := []string{
		c.RawDir("slither"),
		c.ParsedDir("slither"),
		c.LogsDir(),
		c.TmpDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}
