package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestGroupNotification_DeepLink(t *testing.T) {
	n := &GroupNotification{Payload: datatypes.JSON(`{"url":"/prayers/3","prayer_id":3}`)}
	assert.Equal(t, "/prayers/3", n.DeepLink())

	assert.Empty(t, (&GroupNotification{}).DeepLink())
	assert.Empty(t, (&GroupNotification{Payload: datatypes.JSON(`not json`)}).DeepLink())
	assert.Empty(t, (*GroupNotification)(nil).DeepLink())
}
