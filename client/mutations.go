package client

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cydxin/mokjang-sdk/query"
	"github.com/rs/zerolog/log"
)

// 乐观函数一律返回新切片，不改动缓存里的原值

// MarkAnnouncementRead 标记已读：乐观地把 is_read 置为 true 并 read_count+1，
// 全部列表和按类型过滤的列表一起更新
func (c *Client) MarkAnnouncementRead(ctx context.Context, id uint64) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	_, err = query.Mutate(ctx, c.cache, query.Mutation[[]Announcement, struct{}]{
		Key:   AnnouncementsKey(""),
		Scope: announcementsRoot,
		Optimistic: func(cur []Announcement) []Announcement {
			out := slices.Clone(cur)
			for i := range out {
				if out[i].ID == id && !out[i].IsRead {
					out[i].IsRead = true
					out[i].ReadCount++
				}
			}
			return out
		},
		Mutate: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.gw.Post(ctx, s.Token, "/announcement/read", map[string]uint64{"id": id}, nil)
		},
		Invalidate: []query.Key{announcementsRoot},
	})
	return err
}

// DeleteAnnouncement 不做乐观更新：失败时缓存保持原样，错误原样返回
func (c *Client) DeleteAnnouncement(ctx context.Context, id uint64) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	_, err = query.Mutate(ctx, c.cache, query.Mutation[[]Announcement, struct{}]{
		Key: AnnouncementsKey(""),
		Mutate: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.gw.Post(ctx, s.Token, "/announcement/delete", map[string]uint64{"id": id}, nil)
		},
		Invalidate: []query.Key{announcementsRoot, commentsRoot},
	})
	return err
}

// CreateAnnouncement typ 为空时服务端按 news 处理
func (c *Client) CreateAnnouncement(ctx context.Context, title, content, typ string) (*Announcement, error) {
	s, err := c.Session()
	if err != nil {
		return nil, err
	}
	return query.Mutate(ctx, c.cache, query.Mutation[[]Announcement, *Announcement]{
		Key: AnnouncementsKey(""),
		Mutate: func(ctx context.Context) (*Announcement, error) {
			var a Announcement
			body := map[string]string{"title": title, "content": content, "type": typ}
			if err := c.gw.Post(ctx, s.Token, "/announcement/create", body, &a); err != nil {
				return nil, err
			}
			return &a, nil
		},
		Invalidate: []query.Key{announcementsRoot},
	})
}

// Volunteer 认领做东：乐观写入做东人和地点
func (c *Client) Volunteer(ctx context.Context, r MeetingRange, meetingID uint64, location string) (*Meeting, error) {
	s, err := c.Session()
	if err != nil {
		return nil, err
	}
	location = strings.TrimSpace(location)
	m, err := query.Mutate(ctx, c.cache, query.Mutation[[]Meeting, *Meeting]{
		Key: MeetingsKey(r),
		Optimistic: func(cur []Meeting) []Meeting {
			out := slices.Clone(cur)
			for i := range out {
				if out[i].ID == meetingID {
					host, loc := s.UserID, location
					out[i].HostID = &host
					out[i].Location = &loc
					out[i].Host = nil
				}
			}
			return out
		},
		Mutate: func(ctx context.Context) (*Meeting, error) {
			var m Meeting
			body := map[string]any{"meeting_id": meetingID, "location": location}
			if err := c.gw.Post(ctx, s.Token, "/meeting/volunteer", body, &m); err != nil {
				return nil, err
			}
			return &m, nil
		},
		Invalidate: []query.Key{meetingsOfGroup(r.GroupID)},
	})
	if err != nil {
		return nil, err
	}
	c.rememberLocation(location)
	return m, nil
}

// CreateMeeting 新建聚会，成功后失效该小组所有日历区间
func (c *Client) CreateMeeting(ctx context.Context, in CreateMeetingInput) (*Meeting, error) {
	s, err := c.Session()
	if err != nil {
		return nil, err
	}
	m, err := query.Mutate(ctx, c.cache, query.Mutation[[]Meeting, *Meeting]{
		Key: meetingsOfGroup(in.GroupID),
		Mutate: func(ctx context.Context) (*Meeting, error) {
			var m Meeting
			if err := c.gw.Post(ctx, s.Token, "/meeting/create", in, &m); err != nil {
				return nil, err
			}
			return &m, nil
		},
	})
	if err != nil {
		return nil, err
	}
	if !in.IsVolunteerOpen {
		c.rememberLocation(in.Location)
	}
	return m, nil
}

func (c *Client) rememberLocation(loc string) {
	if c.prefs == nil || loc == "" {
		return
	}
	if err := c.prefs.AddRecentLocation(loc); err != nil {
		log.Warn().Err(err).Msg("save recent location failed")
	}
}

// RecentLocations 本地最近地点，没有配置偏好存储时为空
func (c *Client) RecentLocations() ([]string, error) {
	if c.prefs == nil {
		return []string{}, nil
	}
	return c.prefs.RecentLocations()
}

// SetPrayerAnswered 乐观切换应允状态；groupID 对应当前展示的列表
func (c *Client) SetPrayerAnswered(ctx context.Context, groupID *uint64, id uint64, answered bool) (*Prayer, error) {
	s, err := c.Session()
	if err != nil {
		return nil, err
	}
	return query.Mutate(ctx, c.cache, query.Mutation[[]Prayer, *Prayer]{
		Key: PrayersKey(groupID),
		Optimistic: func(cur []Prayer) []Prayer {
			out := slices.Clone(cur)
			now := time.Now()
			for i := range out {
				if out[i].ID != id {
					continue
				}
				out[i].IsAnswered = answered
				if answered {
					out[i].AnsweredAt = &now
				} else {
					out[i].AnsweredAt = nil
				}
			}
			return out
		},
		Mutate: func(ctx context.Context) (*Prayer, error) {
			var p Prayer
			body := map[string]any{"id": id, "answered": answered}
			if err := c.gw.Post(ctx, s.Token, "/prayer/answered", body, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		Invalidate: []query.Key{prayersRoot},
	})
}

// CreatePrayer visibility: public/group/private
func (c *Client) CreatePrayer(ctx context.Context, content, visibility string, groupID *uint64) (*Prayer, error) {
	s, err := c.Session()
	if err != nil {
		return nil, err
	}
	return query.Mutate(ctx, c.cache, query.Mutation[[]Prayer, *Prayer]{
		Key: PrayersKey(groupID),
		Mutate: func(ctx context.Context) (*Prayer, error) {
			var p Prayer
			body := map[string]any{"content": content, "visibility": visibility, "group_id": groupID}
			if err := c.gw.Post(ctx, s.Token, "/prayer/create", body, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
		Invalidate: []query.Key{prayersRoot},
	})
}

// AddComment 乐观追加一条 id=0 的占位评论，成功后重拉替换
func (c *Client) AddComment(ctx context.Context, parentType string, parentID uint64, content string) (*Comment, error) {
	s, err := c.Session()
	if err != nil {
		return nil, err
	}
	return query.Mutate(ctx, c.cache, query.Mutation[[]Comment, *Comment]{
		Key: CommentsKey(parentType, parentID),
		Optimistic: func(cur []Comment) []Comment {
			out := make([]Comment, 0, len(cur)+1)
			out = append(out, cur...)
			return append(out, Comment{
				ParentType: parentType,
				ParentID:   parentID,
				UserID:     s.UserID,
				Content:    content,
				CreatedAt:  time.Now(),
			})
		},
		Mutate: func(ctx context.Context) (*Comment, error) {
			var cm Comment
			body := map[string]any{"parent_type": parentType, "parent_id": parentID, "content": content}
			if err := c.gw.Post(ctx, s.Token, "/comment/create", body, &cm); err != nil {
				return nil, err
			}
			return &cm, nil
		},
	})
}

// CreateGroup 创建小组，成功后失效小组列表
func (c *Client) CreateGroup(ctx context.Context, in CreateGroupInput) (*Group, error) {
	s, err := c.Session()
	if err != nil {
		return nil, err
	}
	return query.Mutate(ctx, c.cache, query.Mutation[[]Group, *Group]{
		Key: MyGroupsKey(),
		Mutate: func(ctx context.Context) (*Group, error) {
			var g Group
			if err := c.gw.Post(ctx, s.Token, "/group/create", in, &g); err != nil {
				return nil, err
			}
			return &g, nil
		},
		Invalidate: []query.Key{groupsRoot},
	})
}

// RequestJoin 申请加入小组
func (c *Client) RequestJoin(ctx context.Context, groupID uint64, message string) (*JoinRequest, error) {
	s, err := c.Session()
	if err != nil {
		return nil, err
	}
	var r JoinRequest
	body := map[string]any{"group_id": groupID, "message": message}
	if err := c.gw.Post(ctx, s.Token, "/group/join/request", body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ApproveJoinRequest 组长同意：乐观地从待处理列表移除
func (c *Client) ApproveJoinRequest(ctx context.Context, groupID, requestID uint64) error {
	return c.processJoinRequest(ctx, groupID, requestID, "/group/join/approve")
}

// RejectJoinRequest 组长拒绝：乐观地从待处理列表移除
func (c *Client) RejectJoinRequest(ctx context.Context, groupID, requestID uint64) error {
	return c.processJoinRequest(ctx, groupID, requestID, "/group/join/reject")
}

func (c *Client) processJoinRequest(ctx context.Context, groupID, requestID uint64, path string) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	_, err = query.Mutate(ctx, c.cache, query.Mutation[[]JoinRequest, struct{}]{
		Key: PendingRequestsKey(groupID),
		Optimistic: func(cur []JoinRequest) []JoinRequest {
			return slices.DeleteFunc(slices.Clone(cur), func(r JoinRequest) bool { return r.ID == requestID })
		},
		Mutate: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.gw.Post(ctx, s.Token, path, map[string]uint64{"id": requestID}, nil)
		},
		Invalidate: []query.Key{groupsRoot},
	})
	return err
}

// RegisterPushToken 登记设备推送 token（不涉及缓存）
func (c *Client) RegisterPushToken(ctx context.Context, token, deviceType string) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	body := map[string]string{"token": token, "device_type": deviceType}
	return c.gw.Post(ctx, s.Token, "/push/register", body, nil)
}

// UnregisterPushToken 注销设备推送 token
func (c *Client) UnregisterPushToken(ctx context.Context, token string) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	return c.gw.Post(ctx, s.Token, "/push/unregister", map[string]string{"token": token}, nil)
}

// MarkNotificationsRead 标记通知已读，所有已缓存的时间窗口一起更新
func (c *Client) MarkNotificationsRead(ctx context.Context, ids []uint64) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	_, err = query.Mutate(ctx, c.cache, query.Mutation[notificationPage, struct{}]{
		Key:   NotificationsKey(defaultNotificationDays),
		Scope: notificationsRoot,
		Optimistic: func(cur notificationPage) notificationPage {
			items := slices.Clone(cur.Items)
			for i := range items {
				if slices.Contains(ids, items[i].ID) {
					items[i].IsRead = true
				}
			}
			return notificationPage{Items: items, NextCursor: cur.NextCursor}
		},
		Mutate: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.gw.Post(ctx, s.Token, "/notification/read", map[string][]uint64{"ids": ids}, nil)
		},
	})
	return err
}
