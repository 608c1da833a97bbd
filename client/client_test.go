package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/cydxin/mokjang-sdk/prefs"
	"github.com/cydxin/mokjang-sdk/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeGateway 按 path 路由到测试里注册的处理函数
type fakeGateway struct {
	mu    sync.Mutex
	gets  map[string]func(q url.Values) (any, error)
	posts map[string]func(body any) (any, error)
	calls map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		gets:  map[string]func(url.Values) (any, error){},
		posts: map[string]func(any) (any, error){},
		calls: map[string]int{},
	}
}

func (f *fakeGateway) onGet(path string, h func(q url.Values) (any, error)) { f.gets[path] = h }
func (f *fakeGateway) onPost(path string, h func(body any) (any, error))    { f.posts[path] = h }

func (f *fakeGateway) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeGateway) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.calls {
		n += v
	}
	return n
}

func (f *fakeGateway) Get(_ context.Context, _ string, path string, q url.Values, out any) error {
	f.mu.Lock()
	f.calls[path]++
	h := f.gets[path]
	f.mu.Unlock()
	if h == nil {
		return fmt.Errorf("unexpected GET %s", path)
	}
	v, err := h(q)
	if err != nil {
		return err
	}
	return roundTrip(v, out)
}

func (f *fakeGateway) Post(_ context.Context, _ string, path string, body, out any) error {
	f.mu.Lock()
	f.calls[path]++
	h := f.posts[path]
	f.mu.Unlock()
	if h == nil {
		return fmt.Errorf("unexpected POST %s", path)
	}
	v, err := h(body)
	if err != nil {
		return err
	}
	return roundTrip(v, out)
}

func roundTrip(v, out any) error {
	if out == nil || v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func newSessionClient(t *testing.T, fg *fakeGateway, opts ...Option) *Client {
	t.Helper()
	c := New(fg, opts...)
	c.StartSession(Session{UserID: 1, Token: "tok"})
	return c
}

func TestNoSession_ShortCircuitsBeforeGateway(t *testing.T) {
	fg := newFakeGateway()
	c := New(fg)
	ctx := context.Background()

	_, err := c.Announcements(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, c.MarkAnnouncementRead(ctx, 1), ErrNoSession)
	assert.ErrorIs(t, c.DeleteAnnouncement(ctx, 1), ErrNoSession)
	_, err = c.Volunteer(ctx, MeetingRange{GroupID: 1}, 1, "Cafe")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = c.AddComment(ctx, ParentPrayer, 1, "amen")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = c.CreateGroup(ctx, CreateGroupInput{Name: "g"})
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, c.ApproveJoinRequest(ctx, 1, 1), ErrNoSession)
	assert.ErrorIs(t, c.RegisterPushToken(ctx, "t", "ios"), ErrNoSession)

	assert.Equal(t, 0, fg.total())
}

func TestDeleteAnnouncement_PermissionDeniedLeavesCacheUnchanged(t *testing.T) {
	fg := newFakeGateway()
	fg.onGet("/announcement/list", func(url.Values) (any, error) {
		return []Announcement{{ID: 7, Title: "notice", AuthorID: 2}}, nil
	})
	fg.onPost("/announcement/delete", func(any) (any, error) {
		return nil, &APIError{Code: CodePermissionDeny, Msg: "permission denied"}
	})
	c := newSessionClient(t, fg)
	ctx := context.Background()

	before, err := c.Announcements(ctx, "")
	require.NoError(t, err)

	err = c.DeleteAnnouncement(ctx, 7)
	ae, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, CodePermissionDeny, ae.Code)

	after, ok := query.GetData[[]Announcement](c.Cache(), AnnouncementsKey(""))
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, query.StateRolledBack, c.Cache().State(AnnouncementsKey("")))

	// 缓存仍然新鲜，不会重拉
	_, err = c.Announcements(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, fg.count("/announcement/list"))
}

func TestMarkAnnouncementRead_OptimisticThenRefetch(t *testing.T) {
	fg := newFakeGateway()
	var mu sync.Mutex
	serverRead := false
	fg.onGet("/announcement/list", func(url.Values) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		a := Announcement{ID: 3, Title: "retreat"}
		if serverRead {
			a.IsRead, a.ReadCount = true, 1
		}
		return []Announcement{a}, nil
	})
	release := make(chan struct{})
	fg.onPost("/announcement/read", func(any) (any, error) {
		<-release
		mu.Lock()
		serverRead = true
		mu.Unlock()
		return nil, nil
	})
	c := newSessionClient(t, fg)
	ctx := context.Background()
	key := AnnouncementsKey("")

	before, err := c.Announcements(ctx, "")
	require.NoError(t, err)
	require.False(t, before[0].IsRead)

	done := make(chan error, 1)
	go func() { done <- c.MarkAnnouncementRead(ctx, 3) }()

	require.Eventually(t, func() bool {
		return c.Cache().State(key) == query.StatePatched
	}, time.Second, 5*time.Millisecond)
	patched, _ := query.GetData[[]Announcement](c.Cache(), key)
	assert.True(t, patched[0].IsRead)
	assert.EqualValues(t, 1, patched[0].ReadCount)
	// 原切片未被改动
	assert.False(t, before[0].IsRead)

	close(release)
	require.NoError(t, <-done)
	assert.True(t, c.Cache().IsStale(key))

	got, err := c.Announcements(ctx, "")
	require.NoError(t, err)
	assert.True(t, got[0].IsRead)
	assert.Equal(t, 2, fg.count("/announcement/list"))
}

func TestVolunteer_RollbackRestoresExactValue(t *testing.T) {
	fg := newFakeGateway()
	fg.onGet("/meeting/list", func(url.Values) (any, error) {
		return []Meeting{{ID: 11, GroupID: 5, Title: "Friday"}}, nil
	})
	boom := errors.New("boom")
	fg.onPost("/meeting/volunteer", func(any) (any, error) { return nil, boom })
	c := newSessionClient(t, fg)
	ctx := context.Background()
	r := MeetingRange{GroupID: 5, From: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}

	before, err := c.Meetings(ctx, r)
	require.NoError(t, err)

	_, err = c.Volunteer(ctx, r, 11, "Cafe")
	assert.ErrorIs(t, err, boom)

	after, ok := query.GetData[[]Meeting](c.Cache(), MeetingsKey(r))
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Nil(t, after[0].HostID)
}

func newPrefs(t *testing.T) *prefs.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	p, err := prefs.NewStore(db)
	require.NoError(t, err)
	return p
}

func TestVolunteer_SuccessRemembersLocation(t *testing.T) {
	fg := newFakeGateway()
	hosted := false
	fg.onGet("/meeting/list", func(url.Values) (any, error) {
		m := Meeting{ID: 11, GroupID: 5}
		if hosted {
			host, loc := uint64(1), "Cafe"
			m.HostID, m.Location = &host, &loc
		}
		return []Meeting{m}, nil
	})
	fg.onPost("/meeting/volunteer", func(any) (any, error) {
		hosted = true
		host, loc := uint64(1), "Cafe"
		return Meeting{ID: 11, GroupID: 5, HostID: &host, Location: &loc}, nil
	})
	p := newPrefs(t)
	c := newSessionClient(t, fg, WithPrefs(p))
	ctx := context.Background()
	r := MeetingRange{GroupID: 5, From: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}

	_, err := c.Meetings(ctx, r)
	require.NoError(t, err)

	m, err := c.Volunteer(ctx, r, 11, "  Cafe ")
	require.NoError(t, err)
	require.NotNil(t, m.HostID)
	assert.EqualValues(t, 1, *m.HostID)

	locs, err := c.RecentLocations()
	require.NoError(t, err)
	assert.Equal(t, []string{"Cafe"}, locs)

	list, err := c.Meetings(ctx, r)
	require.NoError(t, err)
	require.NotNil(t, list[0].HostID)
	assert.Equal(t, 2, fg.count("/meeting/list"))
}

func TestAddComment_OptimisticAppend(t *testing.T) {
	fg := newFakeGateway()
	fg.onGet("/comment/list", func(url.Values) (any, error) {
		return []Comment{{ID: 1, ParentType: ParentPrayer, ParentID: 9, UserID: 2, Content: "praying"}}, nil
	})
	release := make(chan struct{})
	fg.onPost("/comment/create", func(any) (any, error) {
		<-release
		return Comment{ID: 2, ParentType: ParentPrayer, ParentID: 9, UserID: 1, Content: "amen"}, nil
	})
	c := newSessionClient(t, fg)
	ctx := context.Background()
	key := CommentsKey(ParentPrayer, 9)

	_, err := c.Comments(ctx, ParentPrayer, 9)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.AddComment(ctx, ParentPrayer, 9, "amen")
		done <- err
	}()
	require.Eventually(t, func() bool {
		return c.Cache().State(key) == query.StatePatched
	}, time.Second, 5*time.Millisecond)
	patched, _ := query.GetData[[]Comment](c.Cache(), key)
	require.Len(t, patched, 2)
	assert.Zero(t, patched[1].ID)
	assert.Equal(t, "amen", patched[1].Content)

	close(release)
	require.NoError(t, <-done)
	assert.True(t, c.Cache().IsStale(key))
}

func TestApproveJoinRequest_AlreadyProcessedRollsBack(t *testing.T) {
	fg := newFakeGateway()
	fg.onGet("/group/join/pending", func(url.Values) (any, error) {
		return []JoinRequest{{ID: 4, GroupID: 3, UserID: 8, Status: "pending"}}, nil
	})
	fg.onPost("/group/join/approve", func(any) (any, error) {
		return nil, &APIError{Code: CodeAlreadyProcessed, Msg: "already processed"}
	})
	c := newSessionClient(t, fg)
	ctx := context.Background()

	_, err := c.PendingRequests(ctx, 3)
	require.NoError(t, err)

	err = c.ApproveJoinRequest(ctx, 3, 4)
	ae, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, CodeAlreadyProcessed, ae.Code)

	list, _ := query.GetData[[]JoinRequest](c.Cache(), PendingRequestsKey(3))
	require.Len(t, list, 1)
	assert.EqualValues(t, 4, list[0].ID)
}

func TestEndSession_ClearsCache(t *testing.T) {
	fg := newFakeGateway()
	fg.onGet("/group/mine", func(url.Values) (any, error) { return []Group{{ID: 1, Name: "g"}}, nil })
	c := newSessionClient(t, fg)

	_, err := c.MyGroups(context.Background())
	require.NoError(t, err)
	_, ok := query.GetData[[]Group](c.Cache(), MyGroupsKey())
	require.True(t, ok)

	c.EndSession()
	_, ok = query.GetData[[]Group](c.Cache(), MyGroupsKey())
	assert.False(t, ok)
	_, err = c.Session()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogin_StartsSessionWithLanguage(t *testing.T) {
	fg := newFakeGateway()
	fg.onPost("/user/login", func(any) (any, error) {
		return LoginResult{Token: "abc", User: User{ID: 42}}, nil
	})
	p := newPrefs(t)
	require.NoError(t, p.SetLanguage("en"))
	c := New(fg, WithPrefs(p))

	s, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), s.UserID)
	assert.Equal(t, "abc", s.Token)
	assert.Equal(t, "en", s.Language)
}

func TestMarkAnnouncementRead_PatchesFilteredLists(t *testing.T) {
	fg := newFakeGateway()
	fg.onGet("/announcement/list", func(q url.Values) (any, error) {
		if q.Get("type") == "news" {
			return []Announcement{{ID: 3, Type: "news"}}, nil
		}
		return []Announcement{{ID: 2, Type: "picnic"}, {ID: 3, Type: "news"}}, nil
	})
	remote := &APIError{Code: CodePermissionDeny, Msg: "permission denied"}
	c := newSessionClient(t, fg)
	ctx := context.Background()

	_, err := c.Announcements(ctx, "")
	require.NoError(t, err)
	_, err = c.Announcements(ctx, "news")
	require.NoError(t, err)

	fg.onPost("/announcement/read", func(any) (any, error) {
		news, ok := query.GetData[[]Announcement](c.Cache(), AnnouncementsKey("news"))
		require.True(t, ok)
		assert.True(t, news[0].IsRead)
		assert.EqualValues(t, 1, news[0].ReadCount)
		all, _ := query.GetData[[]Announcement](c.Cache(), AnnouncementsKey(""))
		assert.False(t, all[0].IsRead)
		assert.True(t, all[1].IsRead)
		return nil, remote
	})
	err = c.MarkAnnouncementRead(ctx, 3)
	assert.ErrorIs(t, err, remote)

	news, _ := query.GetData[[]Announcement](c.Cache(), AnnouncementsKey("news"))
	assert.False(t, news[0].IsRead)
	assert.EqualValues(t, 0, news[0].ReadCount)
	assert.Equal(t, query.StateRolledBack, c.Cache().State(AnnouncementsKey("news")))
}

func TestNotifications_CachedPerWindow(t *testing.T) {
	fg := newFakeGateway()
	var mu sync.Mutex
	var windows []string
	fg.onGet("/notification/list", func(q url.Values) (any, error) {
		mu.Lock()
		windows = append(windows, q.Get("days"))
		mu.Unlock()
		if q.Get("days") == "30" {
			return notificationPage{Items: []Notification{{ID: 9}, {ID: 1}}, NextCursor: 1}, nil
		}
		return notificationPage{Items: []Notification{{ID: 1}}, NextCursor: 1}, nil
	})
	c := newSessionClient(t, fg)
	ctx := context.Background()

	week, err := c.Notifications(ctx, 7)
	require.NoError(t, err)
	month, err := c.Notifications(ctx, 30)
	require.NoError(t, err)
	_, err = c.Notifications(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"7", "30"}, windows)
	assert.EqualValues(t, 1, week[0].ID)
	assert.EqualValues(t, 9, month[0].ID)

	fg.onPost("/notification/read", func(any) (any, error) {
		for _, days := range []int{7, 30} {
			page, ok := query.GetData[notificationPage](c.Cache(), NotificationsKey(days))
			require.True(t, ok)
			for _, n := range page.Items {
				assert.Equal(t, n.ID == 1, n.IsRead, "days=%d id=%d", days, n.ID)
			}
		}
		return nil, nil
	})
	require.NoError(t, c.MarkNotificationsRead(ctx, []uint64{1}))
	assert.True(t, c.Cache().IsStale(NotificationsKey(30)))
	assert.Equal(t, NotificationsKey(7), NotificationsKey(-1))
}
