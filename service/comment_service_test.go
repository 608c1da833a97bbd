package service

import (
	"testing"

	"github.com/cydxin/mokjang-sdk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddListDelete(t *testing.T) {
	s, rec := newTestService(t)
	author := seedUser(t, s.DB, "pastor")
	bob := seedUser(t, s.DB, "bob")
	as := NewAnnouncementService(s)
	cs := NewCommentService(s, NewPrayerService(s))

	a, err := as.CreateAnnouncement(author.ID, CreateAnnouncementReq{Title: "t", Content: "c"})
	require.NoError(t, err)
	before := rec.count(author.ID)

	c1, err := cs.AddComment(bob.ID, models.ParentAnnouncement, a.ID, " amen ")
	require.NoError(t, err)
	assert.Equal(t, "amen", c1.Content)
	assert.Equal(t, before+1, rec.count(author.ID))

	_, err = cs.AddComment(author.ID, models.ParentAnnouncement, a.ID, "thanks")
	require.NoError(t, err)

	list, err := cs.ListComments(bob.ID, models.ParentAnnouncement, a.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "amen", list[0].Content)
	require.NotNil(t, list[0].Author)
	assert.Equal(t, bob.ID, list[0].Author.ID)

	_, err = cs.AddComment(bob.ID, models.ParentAnnouncement, a.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = cs.AddComment(bob.ID, "video", a.ID, "x")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = cs.AddComment(bob.ID, models.ParentAnnouncement, 9999, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, cs.DeleteComment(author.ID, c1.ID), ErrPermissionDenied)
	require.NoError(t, cs.DeleteComment(bob.ID, c1.ID))
	list, err = cs.ListComments(bob.ID, models.ParentAnnouncement, a.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCommentService_PrivatePrayerHidden(t *testing.T) {
	s, _ := newTestService(t)
	owner := seedUser(t, s.DB, "owner")
	other := seedUser(t, s.DB, "other")
	ps := NewPrayerService(s)
	cs := NewCommentService(s, ps)

	p, err := ps.CreatePrayer(owner.ID, CreatePrayerReq{Content: "secret", Visibility: models.VisibilityPrivate})
	require.NoError(t, err)

	_, err = cs.AddComment(other.ID, models.ParentPrayer, p.ID, "x")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = cs.ListComments(other.ID, models.ParentPrayer, p.ID, 0, 0)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = cs.AddComment(owner.ID, models.ParentPrayer, p.ID, "note to self")
	require.NoError(t, err)
}
