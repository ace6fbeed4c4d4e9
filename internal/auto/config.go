package auto

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	forgeerrors "github.com/forgeflow/forgeflow/internal/errors"
	"github.com/forgeflow/forgeflow/internal/score"
)

// Config defines the control-loop settings for one session
type Config struct {
	// Retry settings
	MaxRetries int `yaml:"max_retries"`

	// Quality gate
	QualityThreshold int           `yaml:"quality_threshold"`
	Dimensions       score.Toggles `yaml:"dimensions"`

	// Behavior flags
	AutoApprove     bool `yaml:"auto_approve"`
	RequireApproval bool `yaml:"require_approval"`
	Verbose         bool `yaml:"verbose"`

	// Where generated artifacts and the session dump land
	OutputDir string `yaml:"output_dir"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxRetries:       3,
		QualityThreshold: 70,
		Dimensions:       score.AllEnabled(),
		AutoApprove:      false,
		RequireApproval:  false,
		Verbose:          false,
		OutputDir:        "forgeflow-out",
	}
}

// LoadConfig reads a YAML config file and overlays it on the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path) //#nosec G304 -- path comes from the user's own flag
	if err != nil {
		return config, forgeerrors.Wrap(forgeerrors.ErrCodeFileReadFailed,
			fmt.Sprintf("read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, forgeerrors.Wrap(forgeerrors.ErrCodeFileReadFailed,
			fmt.Sprintf("parse config file %s", path), err)
	}
	return config, config.Validate()
}

// Validate rejects settings the control loop cannot honor.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return forgeerrors.New(forgeerrors.ErrCodeConfigInvalid, "max_retries must not be negative")
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 100 {
		return forgeerrors.New(forgeerrors.ErrCodeConfigInvalid, "quality_threshold must be within [0,100]")
	}
	return nil
}
