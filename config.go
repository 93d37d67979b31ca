package acidbox

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type (
	// Config is everything needed to bring up an engine: the initial
	// parameters, the audio stream format and logging options.
	Config struct {
		Params Params      `json:"params" yaml:"params"`
		Audio  AudioConfig `json:"audio" yaml:"audio"`
		Log    LogConfig   `json:"log" yaml:"log"`
	}

	AudioConfig struct {
		SampleRate int `json:"sampleRate" yaml:"sampleRate"`
		BlockSize  int `json:"blockSize" yaml:"blockSize"` // frames per audio callback
	}

	LogConfig struct {
		Level       string `json:"level" yaml:"level"`
		Development bool   `json:"development" yaml:"development"`
	}
)

// DefaultBlockSize is the number of frames rendered per audio callback.
const DefaultBlockSize = 512

func DefaultConfig() Config {
	return Config{
		Params: DefaultParams(),
		Audio:  AudioConfig{SampleRate: DefaultSampleRate, BlockSize: DefaultBlockSize},
		Log:    LogConfig{Level: "info"},
	}
}

// ReadConfig decodes a JSON or YAML configuration. Fields missing from the
// input keep their DefaultConfig values.
func ReadConfig(r io.Reader) (Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config: %w", err)
	}
	cfg := DefaultConfig()
	if errJSON := json.Unmarshal(b, &cfg); errJSON != nil {
		cfg = DefaultConfig()
		if errYaml := yaml.Unmarshal(b, &cfg); errYaml != nil {
			return Config{}, fmt.Errorf("the config could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return &ValidationError{Field: "sample rate", Value: c.Audio.SampleRate, Reason: "must be within 8000..192000"}
	}
	if c.Audio.BlockSize <= 0 {
		return &ValidationError{Field: "block size", Value: c.Audio.BlockSize, Reason: "must be positive"}
	}
	if c.Audio.BlockSize >= MaxBlockSize(c.Audio.SampleRate) {
		return &ValidationError{Field: "block size", Value: c.Audio.BlockSize, Reason: fmt.Sprintf("must be shorter than a sixteenth note at the fastest tempo, %d frames", MaxBlockSize(c.Audio.SampleRate))}
	}
	return nil
}

// MaxBlockSize is the length of one tick at the fastest tempo, in frames.
// Notes are applied at block boundaries, so a block must be shorter than this
// for every tick to get a block of its own.
func MaxBlockSize(sampleRate int) int {
	return int(TickInterval(int(ParamRanges["tempo"].Max)) * float64(sampleRate))
}
