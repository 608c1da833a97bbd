package config

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialector 按驱动名选择 gorm 方言
func (d DatabaseConfig) Dialector() (gorm.Dialector, error) {
	if d.DSN == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}
	switch d.Driver {
	case "mysql", "":
		return mysql.Open(d.DSN), nil
	case "postgres", "postgresql":
		return postgres.Open(d.DSN), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(d.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
}

// OpenDB 打开数据库；verbose 时打印 SQL
func OpenDB(d DatabaseConfig, verbose bool) (*gorm.DB, error) {
	dial, err := d.Dialector()
	if err != nil {
		return nil, err
	}
	level := gormlogger.Warn
	if verbose {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, err
	}
	if d.Driver == "sqlite" || d.Driver == "sqlite3" {
		// sqlite 只允许一个写连接
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	return db, nil
}
