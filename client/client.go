// Package client 是 MokJang API 的客户端 SDK：
// 按会话持有一个查询缓存，读接口走缓存，写接口通过乐观更新控制器执行。
package client

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/cydxin/mokjang-sdk/deeplink"
	"github.com/cydxin/mokjang-sdk/prefs"
	"github.com/cydxin/mokjang-sdk/query"
	"github.com/rs/zerolog/log"
)

// ErrNoSession 未登录时的任何读写都在访问远端之前失败
var ErrNoSession = errors.New("no active session")

// Session 当前登录态
type Session struct {
	UserID   uint64
	Token    string
	GroupID  uint64 // 当前选中的小组
	Language string
}

type Client struct {
	gw    Gateway
	cache *query.Cache
	links *deeplink.Router
	prefs *prefs.Store

	mu   sync.RWMutex
	sess *Session
}

type Option func(*Client)

// WithCache 自定义缓存（比如设置新鲜期）
func WithCache(c *query.Cache) Option {
	return func(cl *Client) {
		if c != nil {
			cl.cache = c
		}
	}
}

// WithDeepLinks 通知里的 url 交给该路由
func WithDeepLinks(r *deeplink.Router) Option {
	return func(cl *Client) { cl.links = r }
}

// WithPrefs 本地偏好（语言、最近地点）
func WithPrefs(p *prefs.Store) Option {
	return func(cl *Client) { cl.prefs = p }
}

func New(gw Gateway, opts ...Option) *Client {
	c := &Client{gw: gw}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = query.NewCache()
	}
	if c.links == nil {
		c.links = deeplink.NewRouter()
	}
	return c
}

func (c *Client) Cache() *query.Cache         { return c.cache }
func (c *Client) DeepLinks() *deeplink.Router { return c.links }

// RegisterInput 注册信息，email 可选
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Register 匿名注册，不改变当前会话
func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	var u User
	if err := c.gw.Post(ctx, "", "/user/register", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login 登录并开始会话
func (c *Client) Login(ctx context.Context, account, password string) (*Session, error) {
	var res LoginResult
	body := map[string]string{"account": account, "password": password}
	if err := c.gw.Post(ctx, "", "/user/login", body, &res); err != nil {
		return nil, err
	}
	s := Session{UserID: res.User.ID, Token: res.Token}
	if c.prefs != nil {
		if lang, err := c.prefs.Language(); err == nil {
			s.Language = lang
		}
	}
	c.StartSession(s)
	return c.Session()
}

// StartSession 切换会话，旧缓存作废
func (c *Client) StartSession(s Session) {
	c.mu.Lock()
	c.sess = &s
	c.mu.Unlock()
	c.cache.Clear()
	log.Debug().Uint64("user_id", s.UserID).Msg("client session started")
}

// EndSession 清空会话与缓存
func (c *Client) EndSession() {
	c.mu.Lock()
	c.sess = nil
	c.mu.Unlock()
	c.cache.Clear()
}

// Logout 注销服务端 token，无论成功与否本地会话都会结束
func (c *Client) Logout(ctx context.Context) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	defer c.EndSession()
	return c.gw.Post(ctx, s.Token, "/user/logout", nil, nil)
}

// Session 返回会话副本
func (c *Client) Session() (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sess == nil || c.sess.Token == "" {
		return nil, ErrNoSession
	}
	cp := *c.sess
	return &cp, nil
}

// SelectGroup 记录当前小组
func (c *Client) SelectGroup(groupID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ErrNoSession
	}
	c.sess.GroupID = groupID
	return nil
}

// SetLanguage 更新会话语言，同时写入本地偏好
func (c *Client) SetLanguage(lang string) error {
	if c.prefs != nil {
		if err := c.prefs.SetLanguage(lang); err != nil {
			return err
		}
	}
	c.mu.Lock()
	if c.sess != nil {
		c.sess.Language = lang
	}
	c.mu.Unlock()
	return nil
}

// -------------------- 缓存键 --------------------

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

var (
	announcementsRoot = query.Key{"announcements"}
	groupsRoot        = query.Key{"groups"}
	meetingsRoot      = query.Key{"meetings"}
	prayersRoot       = query.Key{"prayers"}
	commentsRoot      = query.Key{"comments"}
	notificationsRoot = query.Key{"notifications"}
)

// AnnouncementsKey typ 为空表示全部类型
func AnnouncementsKey(typ string) query.Key {
	if typ == "" {
		typ = "all"
	}
	return query.Key{"announcements", typ}
}

func GroupsKey() query.Key   { return query.Key{"groups", "all"} }
func MyGroupsKey() query.Key { return query.Key{"groups", "mine"} }

func PendingRequestsKey(groupID uint64) query.Key {
	return query.Key{"groups", u64(groupID), "requests"}
}

func MeetingsKey(r MeetingRange) query.Key {
	return query.Key{"meetings", u64(r.GroupID), r.From.UTC().Format(time.RFC3339), r.To.UTC().Format(time.RFC3339)}
}

func meetingsOfGroup(groupID uint64) query.Key { return query.Key{"meetings", u64(groupID)} }

// PrayersKey groupID 为 nil 表示所有可见代祷
func PrayersKey(groupID *uint64) query.Key {
	if groupID == nil {
		return query.Key{"prayers", "all"}
	}
	return query.Key{"prayers", u64(*groupID)}
}

func CommentsKey(parentType string, parentID uint64) query.Key {
	return query.Key{"comments", parentType, u64(parentID)}
}

// defaultNotificationDays 与服务端默认窗口一致
const defaultNotificationDays = 7

// NotificationsKey 按拉取窗口区分，days <= 0 视为默认 7 天
func NotificationsKey(days int) query.Key {
	if days <= 0 {
		days = defaultNotificationDays
	}
	return query.Key{"notifications", strconv.Itoa(days)}
}
