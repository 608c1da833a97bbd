package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name  string `mapstructure:"name"`
		Port  string `mapstructure:"port"`
		Debug bool   `mapstructure:"debug"`
		// PublicHost 对外地址，写进 swagger 文档
		PublicHost string `mapstructure:"public_host"`
	} `mapstructure:"app"`

	Database DatabaseConfig `mapstructure:"database"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // mysql / postgres / sqlite
	DSN    string `mapstructure:"dsn"`
}

// EnvPrefix 环境变量前缀，例如 MOKJANG_DATABASE_DSN
const EnvPrefix = "MOKJANG"

// Load 读取 application.yaml（可选）+ MOKJANG_* 环境变量。
// 配置文件不存在时只用默认值和环境变量。
func Load(paths ...string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 只有注册过的 key 才会被 AutomaticEnv 绑定到 Unmarshal
	v.SetDefault("app.name", "mokjang")
	v.SetDefault("app.port", "6789")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.public_host", "")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("application.yaml not found, using env and defaults")
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	log.Info().Str("driver", cfg.Database.Driver).Str("port", cfg.App.Port).Msg("configuration loaded")
	return &cfg, nil
}
