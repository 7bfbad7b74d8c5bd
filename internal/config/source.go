package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"
)

// source resolves a key from the environment first, then from the optional
// YAML file named by CONFIG_FILE.
type source struct {
	file map[string]string
}

func newSource() (*source, error) {
	s := &source{file: map[string]string{}}
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.file); err != nil {
		return nil, fmt.Errorf("parse CONFIG_FILE: %w", err)
	}
	return s, nil
}

func (s *source) get(key, fallback string) string {
	if v, ok := s.file[key]; ok && v != "" {
		fallback = v
	}
	return sharedcfg.EnvOrDefault(key, fallback)
}

func (s *source) duration(key, fallback string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(s.get(key, fallback))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func (s *source) integer(key string, fallback int) (int, error) {
	v := s.get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
