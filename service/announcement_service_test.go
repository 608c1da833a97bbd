package service

import (
	"testing"

	"github.com/cydxin/mokjang-sdk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncementService_MarkReadIdempotent(t *testing.T) {
	s, rec := newTestService(t)
	author := seedUser(t, s.DB, "pastor")
	reader := seedUser(t, s.DB, "reader")
	as := NewAnnouncementService(s)

	a, err := as.CreateAnnouncement(author.ID, CreateAnnouncementReq{Title: "Retreat", Content: "Sign up", Type: models.AnnouncementRetreat})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count(reader.ID))
	assert.Equal(t, 0, rec.count(author.ID))

	list, err := as.ListAnnouncements(reader.ID, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsRead)
	require.NotNil(t, list[0].Author)
	assert.Equal(t, author.ID, list[0].Author.ID)

	require.NoError(t, as.MarkRead(reader.ID, a.ID))
	require.NoError(t, as.MarkRead(reader.ID, a.ID))

	got, err := as.GetAnnouncement(reader.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	assert.EqualValues(t, 1, got.ReadCount)

	other, err := as.GetAnnouncement(author.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, other.IsRead)

	assert.ErrorIs(t, as.MarkRead(0, a.ID), ErrUnauthenticated)
	assert.ErrorIs(t, as.MarkRead(reader.ID, 9999), ErrNotFound)
}

func TestAnnouncementService_DeleteAuthorOnly(t *testing.T) {
	s, _ := newTestService(t)
	author := seedUser(t, s.DB, "pastor")
	other := seedUser(t, s.DB, "other")
	as := NewAnnouncementService(s)

	a, err := as.CreateAnnouncement(author.ID, CreateAnnouncementReq{Title: "News", Content: "..."})
	require.NoError(t, err)
	assert.Equal(t, models.AnnouncementNews, a.Type)

	assert.ErrorIs(t, as.DeleteAnnouncement(other.ID, a.ID), ErrPermissionDenied)
	list, err := as.ListAnnouncements(other.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, as.DeleteAnnouncement(author.ID, a.ID))
	list, err = as.ListAnnouncements(other.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnnouncementService_TypeFilter(t *testing.T) {
	s, _ := newTestService(t)
	author := seedUser(t, s.DB, "pastor")
	as := NewAnnouncementService(s)

	_, err := as.CreateAnnouncement(author.ID, CreateAnnouncementReq{Title: "a", Content: "a", Type: "concert"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = as.CreateAnnouncement(author.ID, CreateAnnouncementReq{Title: "a", Content: "a", Type: models.AnnouncementPicnic})
	require.NoError(t, err)
	_, err = as.CreateAnnouncement(author.ID, CreateAnnouncementReq{Title: "b", Content: "b", Type: models.AnnouncementMeeting})
	require.NoError(t, err)

	picnics, err := as.ListAnnouncements(author.ID, models.AnnouncementPicnic, 0, 0)
	require.NoError(t, err)
	require.Len(t, picnics, 1)
	assert.Equal(t, "a", picnics[0].Title)

	_, err = as.ListAnnouncements(author.ID, "concert", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAnnouncementService_DeleteRemovesReadsAndComments(t *testing.T) {
	s, _ := newTestService(t)
	author := seedUser(t, s.DB, "pastor")
	reader := seedUser(t, s.DB, "reader")
	as := NewAnnouncementService(s)
	cs := NewCommentService(s, NewPrayerService(s))

	a, err := as.CreateAnnouncement(author.ID, CreateAnnouncementReq{Title: "Picnic", Content: "Saturday", Type: models.AnnouncementPicnic})
	require.NoError(t, err)
	require.NoError(t, as.MarkRead(reader.ID, a.ID))
	_, err = cs.AddComment(reader.ID, models.ParentAnnouncement, a.ID, "see you there")
	require.NoError(t, err)

	require.NoError(t, as.DeleteAnnouncement(author.ID, a.ID))

	var reads, comments int64
	require.NoError(t, s.DB.Model(&models.AnnouncementRead{}).Where("announcement_id = ?", a.ID).Count(&reads).Error)
	require.NoError(t, s.DB.Model(&models.Comment{}).
		Where("parent_type = ? AND parent_id = ?", models.ParentAnnouncement, a.ID).Count(&comments).Error)
	assert.Zero(t, reads)
	assert.Zero(t, comments)

	_, err = cs.ListComments(reader.ID, models.ParentAnnouncement, a.ID, 0, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
