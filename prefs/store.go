// Package prefs 客户端本地持久化的少量偏好：界面语言、最近使用的聚会地点。
package prefs

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	keyLanguage        = "language"
	keyRecentLocations = "recent_locations"

	// MaxRecentLocations 最近地点最多保留条数
	MaxRecentLocations = 5
	DefaultLanguage    = "ko"
)

// Pref 一行一个 key，值统一存 JSON
type Pref struct {
	Key   string         `gorm:"primaryKey;size:64"`
	Value datatypes.JSON `gorm:"type:json"`
}

func (Pref) TableName() string { return "mj_pref" }

type Store struct {
	db *gorm.DB
}

// Open 打开（不存在则创建）本地 sqlite 文件
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

// NewStore 使用已有连接，自动建表
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Pref{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) get(key string, out any) (bool, error) {
	var p Pref
	err := s.db.Where(&Pref{Key: key}).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(p.Value, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("prefs: corrupt value ignored")
		return false, nil
	}
	return true, nil
}

func (s *Store) put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Pref{Key: key, Value: datatypes.JSON(b)}).Error
}

// Language 未设置时返回 DefaultLanguage
func (s *Store) Language() (string, error) {
	var lang string
	ok, err := s.get(keyLanguage, &lang)
	if err != nil {
		return "", err
	}
	if !ok || lang == "" {
		return DefaultLanguage, nil
	}
	return lang, nil
}

func (s *Store) SetLanguage(lang string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return errors.New("language is empty")
	}
	return s.put(keyLanguage, lang)
}

// RecentLocations 最近使用在前
func (s *Store) RecentLocations() ([]string, error) {
	var locs []string
	if _, err := s.get(keyRecentLocations, &locs); err != nil {
		return nil, err
	}
	if locs == nil {
		locs = []string{}
	}
	return locs, nil
}

// AddRecentLocation 去空白；空串忽略；已存在则移到最前；最多 MaxRecentLocations 条
func (s *Store) AddRecentLocation(loc string) error {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		st := &Store{db: tx}
		cur, err := st.RecentLocations()
		if err != nil {
			return err
		}
		return st.put(keyRecentLocations, pushRecent(cur, loc, MaxRecentLocations))
	})
}

func pushRecent(list []string, v string, max int) []string {
	out := make([]string, 0, max)
	out = append(out, v)
	for _, x := range list {
		if x == v {
			continue
		}
		if len(out) == max {
			break
		}
		out = append(out, x)
	}
	return out
}
