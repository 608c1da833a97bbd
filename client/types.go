package client

import (
	"encoding/json"
	"time"
)

// 与服务端 JSON 对应的客户端结构，不依赖服务端包

type Profile struct {
	ID        uint64 `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type User struct {
	ID        uint64    `json:"id"`
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Group struct {
	ID           uint64    `json:"id"`
	GroupAccount string    `json:"group_account"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	MeetingTime  string    `json:"meeting_time"`
	Region       string    `json:"region"`
	LeaderID     uint64    `json:"leader_id"`
	Leader       *Profile  `json:"leader,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateGroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MeetingTime string `json:"meeting_time,omitempty"`
	Region      string `json:"region,omitempty"`
}

type JoinRequest struct {
	ID          uint64     `json:"id"`
	UserID      uint64     `json:"user_id"`
	GroupID     uint64     `json:"group_id"`
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Requester   *Profile   `json:"requester,omitempty"`
}

type Meeting struct {
	ID          uint64    `json:"id"`
	GroupID     uint64    `json:"group_id"`
	Title       string    `json:"title"`
	MeetingTime time.Time `json:"meeting_time"`
	Type        string    `json:"type"`
	HostID      *uint64   `json:"host_id"`
	Location    *string   `json:"location"`
	Memo        *string   `json:"memo,omitempty"`
	CreatedBy   uint64    `json:"created_by"`
	Host        *Profile  `json:"host,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NeedsHost 还没有人做东
func (m Meeting) NeedsHost() bool { return m.HostID == nil }

type CreateMeetingInput struct {
	GroupID         uint64    `json:"group_id"`
	Title           string    `json:"title"`
	MeetingTime     time.Time `json:"meeting_time"`
	Type            string    `json:"type,omitempty"`
	IsVolunteerOpen bool      `json:"is_volunteer_open"`
	Location        string    `json:"location,omitempty"`
	Memo            string    `json:"memo,omitempty"`
}

// MeetingRange 日历上的一个区间 [From, To)
type MeetingRange struct {
	GroupID uint64
	From    time.Time
	To      time.Time
}

type Announcement struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	AuthorID  uint64    `json:"author_id"`
	Author    *Profile  `json:"author,omitempty"`
	ReadCount uint64    `json:"read_count"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Prayer struct {
	ID         uint64     `json:"id"`
	UserID     uint64     `json:"user_id"`
	Content    string     `json:"content"`
	Visibility string     `json:"visibility"`
	GroupID    *uint64    `json:"group_id,omitempty"`
	IsAnswered bool       `json:"is_answered"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	Author     *Profile   `json:"author,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Comment struct {
	ID         uint64    `json:"id"`
	ParentType string    `json:"parent_type"`
	ParentID   uint64    `json:"parent_id"`
	UserID     uint64    `json:"user_id"`
	Content    string    `json:"content"`
	Author     *Profile  `json:"author,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Notification struct {
	ID        uint64          `json:"id"`
	EventID   uint64          `json:"event_id"`
	GroupID   uint64          `json:"group_id"`
	ActorID   uint64          `json:"actor_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}

// 评论挂载对象类型
const (
	ParentPrayer       = "prayer"
	ParentAnnouncement = "announcement"
)
