package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueRevokeAll(t *testing.T) {
	ts := NewTokenService(newRedis(t))
	ctx := context.Background()

	t1, err := ts.Issue(ctx, 42)
	require.NoError(t, err)
	t2, err := ts.Issue(ctx, 42)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	uid, err := ts.Lookup(ctx, t2)
	require.NoError(t, err)
	assert.EqualValues(t, 42, uid)

	require.NoError(t, ts.RevokeAll(ctx, 42))
	_, err = ts.Lookup(ctx, t1)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	_, err = ts.Lookup(ctx, t2)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenService_NilRedis(t *testing.T) {
	ts := NewTokenService(nil)
	_, err := ts.Issue(context.Background(), 1)
	assert.Error(t, err)
}
