package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cydxin/mokjang-sdk/models"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB 内存 sqlite，已建好全部表。
// 单连接：:memory: 每个连接是独立数据库。
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
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
	))
	return db
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// wsRecorder 记录 WsNotifier 收到的消息
type wsRecorder struct {
	mu   sync.Mutex
	sent map[uint64][][]byte
}

func (r *wsRecorder) notify(uid uint64, msg []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = make(map[uint64][][]byte)
	}
	r.sent[uid] = append(r.sent[uid], msg)
}

func (r *wsRecorder) count(uid uint64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent[uid])
}

// newTestService 组装 Service + NotificationService
func newTestService(t *testing.T) (*Service, *wsRecorder) {
	t.Helper()
	rec := &wsRecorder{}
	base := &Service{DB: newSQLiteDB(t), TablePrefix: "mj_", WsNotifier: rec.notify}
	base.Notify = NewNotificationService(base)
	return base, rec
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		UID:      "uid-" + username,
		Username: username,
		FullName: fmt.Sprintf("%s full", username),
		Password: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// seedGroup 建组并把 members 加为普通成员
func seedGroup(t *testing.T, s *Service, leader *models.User, members ...*models.User) *GroupDTO {
	t.Helper()
	gs := NewGroupService(s)
	g, err := gs.CreateGroup(leader.ID, CreateGroupReq{Name: "group of " + leader.Username, Region: "Seoul"})
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, s.DB.Create(&models.GroupMember{GroupID: g.ID, UserID: m.ID, Role: models.RoleMember}).Error)
	}
	return g
}
