package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv 按 .env.local > .env 的优先级加载；已存在的环境变量不会被覆盖。
// 返回实际加载的文件。
func LoadDotEnv(dir string) []string {
	if dir == "" {
		dir = "."
	}
	var loaded []string
	for _, f := range []string{filepath.Join(dir, ".env.local"), filepath.Join(dir, ".env")} {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
