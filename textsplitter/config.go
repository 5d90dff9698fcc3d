package textsplitter

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the chunking configuration. It is read from YAML and validated
// once when a Chunker is built.
type Config struct {
	MaxTokens      int `yaml:"max_tokens" json:"max_tokens" validate:"gt=0"`
	OverlapTokens  int `yaml:"overlap_tokens" json:"overlap_tokens" validate:"gte=0,ltfield=MaxTokens"`
	MinChunkTokens int `yaml:"min_chunk_tokens" json:"min_chunk_tokens" validate:"gte=0,ltefield=MaxTokens"`

	PreserveCodeBlocks         bool `yaml:"preserve_code_blocks" json:"preserve_code_blocks"`
	PreserveSections           bool `yaml:"preserve_sections" json:"preserve_sections"`
	RespectSentenceBoundaries  bool `yaml:"respect_sentence_boundaries" json:"respect_sentence_boundaries"`
	RespectParagraphBoundaries bool `yaml:"respect_paragraph_boundaries" json:"respect_paragraph_boundaries"`

	EncodingModel  string         `yaml:"encoding_model" json:"encoding_model" validate:"required"`
	OversizePolicy OversizePolicy `yaml:"oversize_policy" json:"oversize_policy" validate:"oneof=emit error split"`

	DetectExamples bool   `yaml:"detect_examples" json:"detect_examples"`
	MarkerTable    string `yaml:"marker_table,omitempty" json:"marker_table,omitempty"`

	CacheSize int `yaml:"cache_size" json:"cache_size" validate:"gte=0"`
	Workers   int `yaml:"workers" json:"workers" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:                  defaultMaxTokens,
		OverlapTokens:              defaultOverlapTokens,
		MinChunkTokens:             defaultMinChunkTokens,
		PreserveCodeBlocks:         true,
		PreserveSections:           false,
		RespectSentenceBoundaries:  true,
		RespectParagraphBoundaries: true,
		EncodingModel:              defaultEncodingModel,
		OversizePolicy:             OversizeEmit,
		DetectExamples:             true,
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate reports every violated constraint wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	err := configValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, c.describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (c Config) describe(fe validator.FieldError) string {
	switch fe.StructField() {
	case "OverlapTokens":
		if fe.Tag() == "ltfield" {
			return fmt.Sprintf("overlap_tokens (%d) must be less than max_tokens (%d)", c.OverlapTokens, c.MaxTokens)
		}
		return fmt.Sprintf("overlap_tokens must not be negative, got %d", c.OverlapTokens)
	case "MaxTokens":
		return fmt.Sprintf("max_tokens must be positive, got %d", c.MaxTokens)
	case "MinChunkTokens":
		return fmt.Sprintf("min_chunk_tokens (%d) must be between 0 and max_tokens (%d)", c.MinChunkTokens, c.MaxTokens)
	case "OversizePolicy":
		return fmt.Sprintf("oversize_policy must be one of emit, error, split, got %q", c.OversizePolicy)
	case "EncodingModel":
		return "encoding_model is required"
	}
	return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
}
