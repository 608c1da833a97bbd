package cons

import "strconv"

// 统一的小组/社区通知事件类型（event_type）
const (
	EventGroupInfoUpdated      = "group.info_updated"       // 小组信息更新
	EventGroupJoinRequested    = "group.join.requested"     // 入组申请（通知组长）
	EventGroupJoinApproved     = "group.join.approved"      // 入组申请通过
	EventGroupJoinRejected     = "group.join.rejected"      // 入组申请被拒
	EventGroupMemberLeft       = "group.member.left"        // 成员退出
	EventMeetingCreated        = "meeting.created"          // 新聚会
	EventMeetingHostVolunteer  = "meeting.host.volunteered" // 有人认领做东
	EventMeetingUpdated        = "meeting.updated"          // 聚会修改
	EventAnnouncementPublished = "announcement.published"   // 公告发布（社区级）
	EventCommentAdded          = "comment.added"            // 新评论（通知作者）
	EventPrayerAnswered        = "prayer.answered"          // 代祷蒙应允
)

// 通知 payload 中 deep link 的 key
const PayloadURL = "url"

// 客户端路由（deep link）
func AnnouncementURL(id uint64) string { return "/announcements/" + strconv.FormatUint(id, 10) }
func MeetingURL(groupID, id uint64) string {
	return "/groups/" + strconv.FormatUint(groupID, 10) + "/meetings/" + strconv.FormatUint(id, 10)
}
func GroupURL(id uint64) string             { return "/groups/" + strconv.FormatUint(id, 10) }
func JoinRequestsURL(groupID uint64) string { return GroupURL(groupID) + "/requests" }
func PrayerURL(id uint64) string            { return "/prayers/" + strconv.FormatUint(id, 10) }
