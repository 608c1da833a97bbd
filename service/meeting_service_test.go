package service

import (
	"testing"
	"time"

	"github.com/cydxin/mokjang-sdk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingService_CreateVolunteerOpen(t *testing.T) {
	s, _ := newTestService(t)
	leader := seedUser(t, s.DB, "leader")
	g := seedGroup(t, s, leader)
	ms := NewMeetingService(s)

	when := time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC)
	m, err := ms.CreateMeeting(leader.ID, CreateMeetingReq{
		GroupID:         g.ID,
		Title:           "Friday mokjang",
		MeetingTime:     when,
		IsVolunteerOpen: true,
		Location:        "ignored",
	})
	require.NoError(t, err)
	assert.Nil(t, m.HostID)
	assert.Nil(t, m.Location)
	assert.Equal(t, models.MeetingTypeMokjang, m.Type)

	var stored models.Meeting
	require.NoError(t, s.DB.First(&stored, m.ID).Error)
	assert.Nil(t, stored.HostID)
	assert.Nil(t, stored.Location)

	unhosted, err := ms.ListUnhosted(leader.ID, g.ID, when.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, unhosted, 1)
}

func TestMeetingService_CreateFixedHost(t *testing.T) {
	s, _ := newTestService(t)
	leader := seedUser(t, s.DB, "leader")
	bob := seedUser(t, s.DB, "bob")
	g := seedGroup(t, s, leader, bob)
	ms := NewMeetingService(s)

	when := time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC)
	_, err := ms.CreateMeeting(bob.ID, CreateMeetingReq{GroupID: g.ID, Title: "x", MeetingTime: when, Location: "  "})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	m, err := ms.CreateMeeting(bob.ID, CreateMeetingReq{GroupID: g.ID, Title: "x", MeetingTime: when, Location: "Church hall"})
	require.NoError(t, err)
	require.NotNil(t, m.HostID)
	assert.Equal(t, leader.ID, *m.HostID)
	require.NotNil(t, m.Location)
	assert.Equal(t, "Church hall", *m.Location)

	var stored models.Meeting
	require.NoError(t, s.DB.First(&stored, m.ID).Error)
	require.NotNil(t, stored.HostID)
	assert.Equal(t, leader.ID, *stored.HostID)

	outsider := seedUser(t, s.DB, "outsider")
	_, err = ms.CreateMeeting(outsider.ID, CreateMeetingReq{GroupID: g.ID, Title: "x", MeetingTime: when, Location: "a"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = ms.CreateMeeting(0, CreateMeetingReq{GroupID: g.ID, Title: "x", MeetingTime: when, Location: "a"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestMeetingService_VolunteerLastWriterWins(t *testing.T) {
	s, rec := newTestService(t)
	leader := seedUser(t, s.DB, "leader")
	bob := seedUser(t, s.DB, "bob")
	carol := seedUser(t, s.DB, "carol")
	g := seedGroup(t, s, leader, bob, carol)
	ms := NewMeetingService(s)

	m, err := ms.CreateMeeting(leader.ID, CreateMeetingReq{
		GroupID:         g.ID,
		Title:           "open",
		MeetingTime:     time.Date(2026, 3, 13, 19, 0, 0, 0, time.UTC),
		IsVolunteerOpen: true,
	})
	require.NoError(t, err)

	_, err = ms.Volunteer(bob.ID, m.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ms.Volunteer(bob.ID, m.ID, "Bob's home")
	require.NoError(t, err)
	got, err := ms.Volunteer(carol.ID, m.ID, "Carol's home")
	require.NoError(t, err)
	assert.Equal(t, carol.ID, *got.HostID)

	var stored models.Meeting
	require.NoError(t, s.DB.First(&stored, m.ID).Error)
	require.NotNil(t, stored.HostID)
	assert.Equal(t, carol.ID, *stored.HostID)
	assert.Equal(t, "Carol's home", *stored.Location)

	// 两次认领各通知 leader 一次（创建者本人不投递）
	assert.Equal(t, 2, rec.count(leader.ID))

	outsider := seedUser(t, s.DB, "outsider")
	_, err = ms.Volunteer(outsider.ID, m.ID, "x")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestMeetingService_ListMeetingsRange(t *testing.T) {
	s, _ := newTestService(t)
	leader := seedUser(t, s.DB, "leader")
	g := seedGroup(t, s, leader)
	ms := NewMeetingService(s)

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"a", "b", "c"} {
		_, err := ms.CreateMeeting(leader.ID, CreateMeetingReq{
			GroupID:         g.ID,
			Title:           title,
			MeetingTime:     base.Add(time.Duration(i) * 24 * time.Hour),
			IsVolunteerOpen: true,
		})
		require.NoError(t, err)
	}

	list, err := ms.ListMeetings(leader.ID, g.ID, base.Add(24*time.Hour), base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Title)

	all, err := ms.ListMeetings(leader.ID, g.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Title)
	assert.Equal(t, "c", all[2].Title)

	empty, err := ms.ListMeetings(leader.ID, g.ID, base.Add(48*time.Hour), base)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMeetingService_UpdateAndDelete(t *testing.T) {
	s, _ := newTestService(t)
	leader := seedUser(t, s.DB, "leader")
	bob := seedUser(t, s.DB, "bob")
	g := seedGroup(t, s, leader, bob)
	ms := NewMeetingService(s)

	m, err := ms.CreateMeeting(leader.ID, CreateMeetingReq{
		GroupID:         g.ID,
		Title:           "before",
		MeetingTime:     time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC),
		IsVolunteerOpen: true,
	})
	require.NoError(t, err)

	title := "after"
	assert.ErrorIs(t, ms.UpdateMeeting(bob.ID, m.ID, UpdateMeetingReq{Title: &title}), ErrPermissionDenied)

	_, err = ms.Volunteer(bob.ID, m.ID, "Bob's home")
	require.NoError(t, err)
	require.NoError(t, ms.UpdateMeeting(bob.ID, m.ID, UpdateMeetingReq{Title: &title}))

	var stored models.Meeting
	require.NoError(t, s.DB.First(&stored, m.ID).Error)
	assert.Equal(t, "after", stored.Title)

	assert.ErrorIs(t, ms.DeleteMeeting(bob.ID, m.ID), ErrPermissionDenied)
	require.NoError(t, ms.DeleteMeeting(leader.ID, m.ID))
	_, err = ms.Volunteer(bob.ID, m.ID, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
