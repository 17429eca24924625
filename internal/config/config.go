package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// STTConfig holds the streaming recognition provider settings.
type STTConfig struct {
	URL         string        `mapstructure:"url" validate:"required"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model" validate:"required"`
	StreamTTL   time.Duration `mapstructure:"stream_ttl" validate:"required"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"required"`
}

// TranslateConfig holds the translation provider settings.
type TranslateConfig struct {
	URL     string        `mapstructure:"url" validate:"required"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`
}

type Config struct {
	Mode       string          `mapstructure:"mode" validate:"oneof=debug release test"`
	Port       int             `mapstructure:"port" validate:"min=1,max=65535"`
	StaticPath string          `mapstructure:"static_path" validate:"required"`
	ReadLimit  int64           `mapstructure:"read_limit" validate:"min=1024"`
	PingPeriod time.Duration   `mapstructure:"ping_period" validate:"required"`
	Secret     string          `mapstructure:"secret"`
	Origins    []string        `mapstructure:"origins"`
	STT        STTConfig       `mapstructure:"stt"`
	Translate  TranslateConfig `mapstructure:"translate"`
}

func Load() (*Config, error) {
	// .env is a development convenience, absence is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "")
	v.SetDefault("origins", []string{})
	v.SetDefault("stt.url", "ws://127.0.0.1:9000/listen")
	v.SetDefault("stt.api_key", "")
	v.SetDefault("stt.model", "general")
	v.SetDefault("stt.stream_ttl", "4m")
	v.SetDefault("stt.dial_timeout", "5s")
	v.SetDefault("translate.url", "http://127.0.0.1:9010/translate")
	v.SetDefault("translate.api_key", "")
	v.SetDefault("translate.timeout", "4s")

	v.SetEnvPrefix("PARLEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Static: %s\n", cfg.Mode, cfg.Port, cfg.StaticPath)
	return &cfg, nil
}
