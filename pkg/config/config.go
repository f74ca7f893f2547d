package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Editor  EditorConfig  `mapstructure:"editor"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type AppConfig struct {
	Env      string `mapstructure:"env" validate:"oneof=development production test"`
	HttpPort string `mapstructure:"http_port" validate:"required,numeric"`
	// 为空时按 env 选择默认级别
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

type EditorConfig struct {
	Network string `mapstructure:"network" validate:"oneof=mainnet bitcoin testnet3 regtest signet simnet"`
	Prompt  string `mapstructure:"prompt"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var Global Config

// Init 读取配置文件与环境变量到 Global，configFile 为空时按默认路径查找
func Init(configFile string) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config") // name of config file (without extension)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// 环境变量设置: PSBT_EDITOR_EDITOR_NETWORK=testnet3
	v.SetEnvPrefix("psbt_editor")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	Global = cfg
}

// Default 返回只包含默认值的配置 (测试和 inspect 命令使用)
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate 校验配置取值
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")
	v.SetDefault("app.log_level", "")

	v.SetDefault("editor.network", "mainnet")
	v.SetDefault("editor.prompt", "psbt> ")

	v.SetDefault("metrics.enabled", true)
}
