package main

import (
	"encoding/json"
	"os"
)

type Config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// loadConfig reads the JSON config; a missing file falls back to env so the
// binary can run with just OPENAI_API_KEY set.
func loadConfig(path string) (*Config, error) {
	var conf Config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(file, &conf); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if conf.APIKey == "" {
		conf.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if conf.Model == "" {
		conf.Model = os.Getenv("OPENAI_MODEL")
	}
	if conf.BaseURL == "" {
		conf.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	return &conf, nil
}
