package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken string        `mapstructure:"telegram_token"`
	HTTPAddr      string        `mapstructure:"http_addr"`
	LogMode       string        `mapstructure:"log_mode"`
	Backend       string        `mapstructure:"backend"`
	ModelPath     string        `mapstructure:"model_path"`
	ModelInput    int           `mapstructure:"model_input_size"`
	MasksDir      string        `mapstructure:"masks_dir"`
	Confidence    float64       `mapstructure:"confidence"`
	NMSThreshold  float64       `mapstructure:"nms_threshold"`
	MaskThreshold float64       `mapstructure:"mask_threshold"`
	BlendWeight   float64       `mapstructure:"blend_weight"`
	ObjectNoun    string        `mapstructure:"object_noun"`
	Workers       int           `mapstructure:"workers"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	QueueTimeout  time.Duration `mapstructure:"queue_timeout"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
	OutputFormat  string        `mapstructure:"output_format"`
}

const (
	BackendGo     = "go"
	BackendOpenCV = "opencv"
)

// Load читает .env (если есть) и переменные окружения поверх значений по умолчанию
func Load(envFiles ...string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram_token", "")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_mode", "debug")
	v.SetDefault("backend", BackendGo)
	v.SetDefault("model_path", "resources/model.onnx")
	v.SetDefault("model_input_size", 640)
	v.SetDefault("masks_dir", "")
	v.SetDefault("confidence", 0.25)
	v.SetDefault("nms_threshold", 0.45)
	v.SetDefault("mask_threshold", 0.5)
	v.SetDefault("blend_weight", 0.5)
	v.SetDefault("object_noun", "Leaf")
	v.SetDefault("workers", 4)
	v.SetDefault("max_concurrent", 2)
	v.SetDefault("queue_timeout", 30*time.Second)
	v.SetDefault("max_upload_size", 10*1024*1024)
	v.SetDefault("output_format", "jpeg")
}

// Validate проверяет значения, которые нельзя молча исправить
func (c *Config) Validate() error {
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("CONFIDENCE must be in [0, 1], got %v", c.Confidence)
	}
	if c.MaskThreshold < 0 || c.MaskThreshold >= 1 {
		return fmt.Errorf("MASK_THRESHOLD must be in [0, 1), got %v", c.MaskThreshold)
	}
	if c.BlendWeight < 0 || c.BlendWeight > 1 {
		return fmt.Errorf("BLEND_WEIGHT must be in [0, 1], got %v", c.BlendWeight)
	}
	if c.Backend != BackendGo && c.Backend != BackendOpenCV {
		return fmt.Errorf("BACKEND must be %q or %q, got %q", BackendGo, BackendOpenCV, c.Backend)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 1
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = 10 * 1024 * 1024
	}
	return nil
}
