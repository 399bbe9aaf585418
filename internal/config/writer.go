package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/pdwriter/internal/prediction"
)

// DefaultConfigPath is the path to the canonical writer defaults file.
const DefaultConfigPath = "config/writer.defaults.json"

const (
	defaultDBPath     = "predictions.db"
	defaultListenAddr = "localhost:50061"
)

// WriterConfig holds settings shared by the prediction tools. Nil fields
// fall back to the defaults returned by the Get* methods.
type WriterConfig struct {
	OutputPath         *string `json:"output_path,omitempty"`
	ValidationMode     *string `json:"validation_mode,omitempty"` // off, warn or strict
	Task               *string `json:"task,omitempty"`
	MaxObjectsPerFrame *int    `json:"max_objects_per_frame,omitempty"` // negative disables the check

	// Store and server
	DBPath     *string `json:"db_path,omitempty"`
	ListenAddr *string `json:"listen_addr,omitempty"`
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyWriterConfig returns a WriterConfig with all fields set to nil.
func EmptyWriterConfig() *WriterConfig {
	return &WriterConfig{}
}

// DefaultWriterConfig returns a WriterConfig with every field populated.
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		OutputPath:         ptrString(prediction.DefaultOutputPath),
		ValidationMode:     ptrString(string(prediction.ValidateWarn)),
		Task:               ptrString(string(prediction.TaskDetection3D)),
		MaxObjectsPerFrame: ptrInt(prediction.DefaultMaxObjectsPerFrame),
		DBPath:             ptrString(defaultDBPath),
		ListenAddr:         ptrString(defaultListenAddr),
	}
}

// LoadWriterConfig loads a WriterConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadWriterConfig(path string) (*WriterConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyWriterConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *WriterConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadWriterConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *WriterConfig) Validate() error {
	if c.OutputPath != nil && *c.OutputPath == "" {
		return fmt.Errorf("output_path must not be empty")
	}
	if c.ValidationMode != nil {
		if _, err := prediction.ParseValidationMode(*c.ValidationMode); err != nil {
			return fmt.Errorf("invalid validation_mode: %w", err)
		}
	}
	if c.Task != nil {
		if _, err := prediction.ParseTask(*c.Task); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}
	}
	if c.MaxObjectsPerFrame != nil && *c.MaxObjectsPerFrame == 0 {
		return fmt.Errorf("max_objects_per_frame must be positive, or negative to disable")
	}
	if c.DBPath != nil && *c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	return nil
}

// GetOutputPath returns the output_path value or the default.
func (c *WriterConfig) GetOutputPath() string {
	if c.OutputPath == nil {
		return prediction.DefaultOutputPath
	}
	return *c.OutputPath
}

// GetValidationMode returns the parsed validation_mode or the default.
func (c *WriterConfig) GetValidationMode() prediction.ValidationMode {
	if c.ValidationMode == nil {
		return prediction.ValidateWarn
	}
	m, err := prediction.ParseValidationMode(*c.ValidationMode)
	if err != nil {
		return prediction.ValidateWarn // default on parse error
	}
	return m
}

// GetTask returns the parsed task or the default.
func (c *WriterConfig) GetTask() prediction.Task {
	if c.Task == nil {
		return prediction.TaskDetection3D
	}
	t, err := prediction.ParseTask(*c.Task)
	if err != nil {
		return prediction.TaskDetection3D
	}
	return t
}

// GetMaxObjectsPerFrame returns the max_objects_per_frame value or the default.
func (c *WriterConfig) GetMaxObjectsPerFrame() int {
	if c.MaxObjectsPerFrame == nil {
		return prediction.DefaultMaxObjectsPerFrame
	}
	return *c.MaxObjectsPerFrame
}

// GetDBPath returns the db_path value or the default.
func (c *WriterConfig) GetDBPath() string {
	if c.DBPath == nil {
		return defaultDBPath
	}
	return *c.DBPath
}

// GetListenAddr returns the listen_addr value or the default.
func (c *WriterConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return defaultListenAddr
	}
	return *c.ListenAddr
}

// BuilderOptions returns the prediction builder options for this config.
func (c *WriterConfig) BuilderOptions() []prediction.BuilderOption {
	return []prediction.BuilderOption{
		prediction.WithTask(c.GetTask()),
		prediction.WithValidation(c.GetValidationMode()),
		prediction.WithMaxObjectsPerFrame(c.GetMaxObjectsPerFrame()),
	}
}
