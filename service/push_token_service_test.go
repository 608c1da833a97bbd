package service

import (
	"testing"

	"github.com/cydxin/mokjang-sdk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushTokenService_Upsert(t *testing.T) {
	s, _ := newTestService(t)
	bob := seedUser(t, s.DB, "bob")
	carol := seedUser(t, s.DB, "carol")
	ps := NewPushTokenService(s)

	require.NoError(t, ps.RegisterToken(bob.ID, RegisterTokenReq{Token: "tok-1", DeviceType: "ios"}))
	require.NoError(t, ps.RegisterToken(bob.ID, RegisterTokenReq{Token: "tok-1", DeviceType: "Android"}))
	require.NoError(t, ps.RegisterToken(carol.ID, RegisterTokenReq{Token: "tok-1", DeviceType: "web"}))

	var count int64
	require.NoError(t, s.DB.Model(&models.PushToken{}).Where("user_id = ?", bob.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	tokens, err := ps.TokensForUsers([]uint64{bob.ID, carol.ID})
	require.NoError(t, err)
	require.Len(t, tokens[bob.ID], 1)
	assert.Equal(t, models.DeviceAndroid, tokens[bob.ID][0].DeviceType)
	assert.Len(t, tokens[carol.ID], 1)

	assert.ErrorIs(t, ps.RegisterToken(bob.ID, RegisterTokenReq{Token: "t", DeviceType: "blackberry"}), ErrInvalidArgument)
	assert.ErrorIs(t, ps.RegisterToken(0, RegisterTokenReq{Token: "t", DeviceType: "ios"}), ErrUnauthenticated)

	require.NoError(t, ps.UnregisterToken(bob.ID, "tok-1"))
	tokens, err = ps.TokensForUsers([]uint64{bob.ID})
	require.NoError(t, err)
	assert.Empty(t, tokens[bob.ID])
}
