package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/mutate"
	"github.com/mypersonaltherapeutics/qtip/internal/domain/scoring"
)

// Config holds every knob for one evaluation run. YAML keys line up
// with the qtip run flags, so a config file mirrors the command line.
type Config struct {
	Fasta       []string `yaml:"fasta"`
	Scoring     string   `yaml:"scoring"`
	NumReads    int      `yaml:"num_reads"`
	MinLength   int      `yaml:"min_len"`
	MaxLength   int      `yaml:"max_len"`
	MinIdentity float64  `yaml:"min_id"`
	Sampling    string   `yaml:"sampling"`
	Seed        int64    `yaml:"seed"` // 0 picks a time-based seed

	AlignerExe  string `yaml:"aligner_exe"`
	AlignerArgs string `yaml:"aligner_args"`
	MaxRefBases int64  `yaml:"max_ref_bases"` // 0 = unbounded

	SurprisePath string `yaml:"surprise"`
	Verify       bool   `yaml:"verify"`
	MaxAttempts  int    `yaml:"max_attempts"`

	DBPath     string `yaml:"db"`
	Progress   bool   `yaml:"progress"`
	Cumulative bool   `yaml:"cumulative"`
}

// DefaultConfig mirrors the flag defaults of qtip run.
func DefaultConfig() Config {
	return Config{
		Scoring:     scoring.DefaultString,
		NumReads:    100,
		MinLength:   50,
		MaxLength:   400,
		MinIdentity: 0.95,
		Sampling:    string(mutate.PolicyScore),
		AlignerExe:  "bowtie2",
		MaxAttempts: mutate.DefaultMaxAttempts,
	}
}

// LoadConfigFile reads a YAML config file over base and returns the
// merged result. Keys absent from the file keep base's values.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks everything that can be checked without touching the
// filesystem or spawning processes.
func (c *Config) Validate() error {
	if len(c.Fasta) == 0 {
		return fmt.Errorf("at least one reference fasta is required")
	}
	if _, err := scoring.Parse(c.Scoring); err != nil {
		return err
	}
	if _, err := mutate.ParsePolicy(c.Sampling); err != nil {
		return err
	}
	if c.NumReads < 1 {
		return fmt.Errorf("num reads %d: want at least 1", c.NumReads)
	}
	if c.MinLength < 1 || c.MaxLength < c.MinLength {
		return fmt.Errorf("read length range %d..%d: want 1 <= min <= max", c.MinLength, c.MaxLength)
	}
	if c.MinIdentity <= 0 || c.MinIdentity > 1 {
		return fmt.Errorf("min identity %v: want in (0, 1]", c.MinIdentity)
	}
	if c.AlignerExe == "" {
		return fmt.Errorf("aligner executable not set")
	}
	return nil
}
