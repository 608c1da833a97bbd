package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/cydxin/mokjang-sdk/query"
)

// cached 读接口统一入口：先校验会话，再走缓存
func cached[T any](ctx context.Context, c *Client, key query.Key, path string, q url.Values) (T, error) {
	var zero T
	s, err := c.Session()
	if err != nil {
		return zero, err
	}
	return query.Query(ctx, c.cache, key, func(ctx context.Context) (T, error) {
		var out T
		if err := c.gw.Get(ctx, s.Token, path, q, &out); err != nil {
			return zero, err
		}
		return out, nil
	})
}

// Announcements 公告列表，typ 为空表示全部
func (c *Client) Announcements(ctx context.Context, typ string) ([]Announcement, error) {
	q := url.Values{}
	if typ != "" {
		q.Set("type", typ)
	}
	q.Set("limit", "100")
	return cached[[]Announcement](ctx, c, AnnouncementsKey(typ), "/announcement/list", q)
}

func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	return cached[[]Group](ctx, c, GroupsKey(), "/group/list", url.Values{"limit": {"200"}})
}

func (c *Client) MyGroups(ctx context.Context) ([]Group, error) {
	return cached[[]Group](ctx, c, MyGroupsKey(), "/group/mine", nil)
}

// Meetings 日历区间 [From, To) 内的聚会
func (c *Client) Meetings(ctx context.Context, r MeetingRange) ([]Meeting, error) {
	q := url.Values{
		"group_id": {u64(r.GroupID)},
		"from":     {r.From.UTC().Format(time.RFC3339)},
		"to":       {r.To.UTC().Format(time.RFC3339)},
	}
	return cached[[]Meeting](ctx, c, MeetingsKey(r), "/meeting/list", q)
}

// Prayers groupID 为 nil 时返回所有可见代祷
func (c *Client) Prayers(ctx context.Context, groupID *uint64) ([]Prayer, error) {
	q := url.Values{"limit": {"100"}}
	if groupID != nil {
		q.Set("group_id", u64(*groupID))
	}
	return cached[[]Prayer](ctx, c, PrayersKey(groupID), "/prayer/list", q)
}

func (c *Client) Comments(ctx context.Context, parentType string, parentID uint64) ([]Comment, error) {
	q := url.Values{
		"parent_type": {parentType},
		"parent_id":   {u64(parentID)},
		"limit":       {"100"},
	}
	return cached[[]Comment](ctx, c, CommentsKey(parentType, parentID), "/comment/list", q)
}

func (c *Client) PendingRequests(ctx context.Context, groupID uint64) ([]JoinRequest, error) {
	return cached[[]JoinRequest](ctx, c, PendingRequestsKey(groupID), "/group/join/pending", url.Values{"group_id": {u64(groupID)}})
}

type notificationPage struct {
	Items      []Notification `json:"items"`
	NextCursor uint64         `json:"next_cursor"`
}

// Notifications 最近 days 天的通知（第一页）
func (c *Client) Notifications(ctx context.Context, days int) ([]Notification, error) {
	if days <= 0 {
		days = defaultNotificationDays
	}
	q := url.Values{"days": {strconv.Itoa(days)}}
	page, err := cached[notificationPage](ctx, c, NotificationsKey(days), "/notification/list", q)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
