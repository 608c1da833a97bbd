package mokjang_sdk

import (
	"fmt"

	"github.com/cydxin/mokjang-sdk/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Models 全部需要建表的模型
func Models() []any {
	return []any{
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupJoinRequest{},
		&models.Meeting{},
		&models.Announcement{},
		&models.AnnouncementRead{},
		&models.Comment{},
		&models.PrayerRequest{},
		&models.PushToken{},
		&models.GroupNotification{},
		&models.GroupNotificationDelivery{},
	}
}

func (e *Engine) AutoMigrate() error {
	return Migrate(e.config.DB)
}

// Migrate 建表/补字段
func Migrate(db *gorm.DB) error {
	log.Info().Msg("AutoMigrate...")
	return db.AutoMigrate(Models()...)
}

// TableStatus 表名 -> 是否存在
type TableStatus struct {
	Table  string
	Exists bool
}

// MigrationStatus 检查每个模型对应的表是否已创建
func MigrationStatus(db *gorm.DB) ([]TableStatus, error) {
	out := make([]TableStatus, 0, len(Models()))
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		out = append(out, TableStatus{Table: stmt.Schema.Table, Exists: db.Migrator().HasTable(m)})
	}
	return out, nil
}

// ColumnInfo gorm 解析出的字段及其在当前方言下的 SQL 类型
type ColumnInfo struct {
	GoName     string
	Column     string
	SQLType    string
	PrimaryKey bool
	NotNull    bool
	InDB       bool // 库里是否已有该列
}

// TableSchema 打印某张表的 gorm 解析结果，用于排查字段类型和实际库结构不一致
func TableSchema(db *gorm.DB, table string) ([]ColumnInfo, error) {
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		if stmt.Schema.Table != table {
			continue
		}
		out := make([]ColumnInfo, 0, len(stmt.Schema.Fields))
		for _, f := range stmt.Schema.Fields {
			if f.DBName == "" {
				continue
			}
			out = append(out, ColumnInfo{
				GoName:     f.Name,
				Column:     f.DBName,
				SQLType:    db.Dialector.DataTypeOf(f),
				PrimaryKey: f.PrimaryKey,
				NotNull:    f.NotNull,
				InDB:       db.Migrator().HasColumn(m, f.DBName),
			})
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown table %q", table)
}
