package config

import (
	"fmt"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

type Config struct {
	BaseURL       string        `koanf:"base_url"`
	Timeout       time.Duration `koanf:"timeout"`
	DataDir       string        `koanf:"data_dir"`
	StorageDriver string        `koanf:"storage_driver"`
	StorageDSN    string        `koanf:"storage_dsn"`
	StorageKey    string        `koanf:"storage_key"`
	DemoData      bool          `koanf:"demo_data"`
	LLMBaseURL    string        `koanf:"llm_base_url"`
	LLMAPIKey     string        `koanf:"llm_api_key"`
	LLMModel      string        `koanf:"llm_model"`
	LogFile       string        `koanf:"log_file"`
	Debug         bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Config{
		Timeout:       20 * time.Second,
		DataDir:       "./data",
		StorageDriver: "sqlite",
		DemoData:      true,
		LogFile:       "./bizdash.log",
		Debug:         false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}
