package mokjang_sdk

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB      *gorm.DB
	RDB     *redis.Client
	Service ServiceConfig

	// SkipAutoMigrate 为 true 时 NewEngine 不建表（由 cmd/migrate 单独执行）
	SkipAutoMigrate bool
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}

func WithSkipAutoMigrate(skip bool) Option {
	return func(c *Config) {
		c.SkipAutoMigrate = skip
	}
}
