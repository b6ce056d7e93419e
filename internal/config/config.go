package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mini-maxit/taucheck/internal/logger"
	"github.com/mini-maxit/taucheck/pkg/constants"
	customErr "github.com/mini-maxit/taucheck/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the run settings that do not come from positional arguments.
// Order and Verify may still be abbreviations at this point.
type Config struct {
	Order      string
	Verify     string
	Checker    string
	Timeout    float64
	Processes  int
	ScratchDir string
	AmqpURL    string
	AmqpQueue  string
}

// fileConfig mirrors the YAML config file. Unset keys stay nil so they do not
// override values from the environment.
type fileConfig struct {
	Order      *string  `yaml:"order"`
	Verify     *string  `yaml:"verify"`
	Checker    *string  `yaml:"checker"`
	Timeout    *float64 `yaml:"timeout"`
	Processes  *int     `yaml:"processes"`
	ScratchDir *string  `yaml:"scratch_dir"`
	Amqp       struct {
		URL   *string `yaml:"url"`
		Queue *string `yaml:"queue"`
	} `yaml:"amqp"`
}

// NewConfig reads settings from the environment, loading a .env file from the
// working directory first when there is one. Variables that are already set
// take precedence over the .env file.
func NewConfig() (*Config, error) {
	logger := logger.NewNamedLogger("config")

	_, err := os.Stat(constants.EnvFileName)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s file: %w", constants.EnvFileName, err)
		}
	} else {
		logger.Infof("Loading environment from %s", constants.EnvFileName)
		if err := godotenv.Load(constants.EnvFileName); err != nil {
			return nil, fmt.Errorf("failed to load %s file: %w", constants.EnvFileName, err)
		}
	}

	timeout, err := floatEnv(constants.EnvTimeout, constants.DefaultTimeoutSec)
	if err != nil {
		return nil, err
	}
	processes, err := intEnv(constants.EnvProcesses, constants.DefaultProcesses)
	if err != nil {
		return nil, err
	}

	return &Config{
		Order:      stringEnv(constants.EnvOrder, constants.DefaultOrder),
		Verify:     stringEnv(constants.EnvVerify, constants.DefaultVerify),
		Checker:    os.Getenv(constants.EnvChecker),
		Timeout:    timeout,
		Processes:  processes,
		ScratchDir: os.Getenv(constants.EnvScratchDir),
		AmqpURL:    os.Getenv(constants.EnvAmqpURL),
		AmqpQueue:  stringEnv(constants.EnvAmqpQueue, constants.DefaultAmqpQueueName),
	}, nil
}

// ApplyFile overlays the keys set in the YAML file at path. Unknown keys are rejected.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.Order, fc.Order)
	setString(&c.Verify, fc.Verify)
	setString(&c.Checker, fc.Checker)
	setString(&c.ScratchDir, fc.ScratchDir)
	setString(&c.AmqpURL, fc.Amqp.URL)
	setString(&c.AmqpQueue, fc.Amqp.Queue)
	if fc.Timeout != nil {
		c.Timeout = *fc.Timeout
	}
	if fc.Processes != nil {
		c.Processes = *fc.Processes
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: got %g", customErr.ErrInvalidTimeout, c.Timeout)
	}
	if c.Processes < 1 {
		return fmt.Errorf("%w: got %d", customErr.ErrInvalidWorkers, c.Processes)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func stringEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		logger.NewNamedLogger("config").Debugf("%s is not set, using default value %s", key, def)
		return def
	}
	return v
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		logger.NewNamedLogger("config").Debugf("%s is not set, using default value %d", key, def)
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		logger.NewNamedLogger("config").Debugf("%s is not set, using default value %g", key, def)
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return f, nil
}
