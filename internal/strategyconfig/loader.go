package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file and returns the validated Config with its raw bytes
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, data, nil
}

// Parse decodes YAML over the defaults and validates
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
// 기본값을 먼저 채운 뒤 디코딩하므로 YAML 에 명시한 0 은 그대로 유지된다
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration (same as an empty YAML document)
func Default() *Config {
	var cfg Config
	if err := applyDefaults(&cfg); err != nil {
		panic(fmt.Sprintf("strategyconfig defaults: %v", err))
	}
	return &cfg
}

func applyDefaults(cfg *Config) error {
	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	// 블록 단위 기본값 (구조체 필드라 태그로 표현 불가)
	cfg.Scoring.Weights = DefaultWeights()
	cfg.Scoring.RegimeAdjustments = DefaultRegimeAdjustments()
	return nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
