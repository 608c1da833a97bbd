package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID     int
	IsRead bool
}

func markRead(id int) func([]item) []item {
	return func(cur []item) []item {
		out := make([]item, len(cur))
		copy(out, cur)
		for i := range out {
			if out[i].ID == id {
				out[i].IsRead = true
			}
		}
		return out
	}
}

func TestMutate_RollbackRestoresSnapshot(t *testing.T) {
	c := NewCache()
	key := Key{"announcements"}
	before := []item{{ID: 1}, {ID: 2}}
	SetData(c, key, before)

	var states []State
	c.Subscribe(key, func() { states = append(states, c.State(key)) })

	remote := errors.New("permission denied")
	_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
		Key:        key,
		Optimistic: markRead(1),
		Mutate: func(ctx context.Context) (struct{}, error) {
			patched, ok := GetData[[]item](c, key)
			require.True(t, ok)
			assert.True(t, patched[0].IsRead)
			assert.Equal(t, StatePatched, c.State(key))
			return struct{}{}, fmt.Errorf("remote: %w", remote)
		},
	})
	assert.ErrorIs(t, err, remote)

	after, ok := GetData[[]item](c, key)
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, []item{{ID: 1}, {ID: 2}}, after)
	assert.Equal(t, StateRolledBack, c.State(key))
	assert.False(t, c.IsStale(key))
	assert.Equal(t, []State{StatePatched, StateRolledBack}, states)
}

func TestMutate_SuccessInvalidatesAndRefetches(t *testing.T) {
	c := NewCache()
	key := Key{"announcements"}
	other := Key{"notifications"}
	SetData(c, key, []item{{ID: 1}})
	SetData(c, other, 0)

	res, err := Mutate(context.Background(), c, Mutation[[]item, string]{
		Key:        key,
		Optimistic: markRead(1),
		Mutate: func(ctx context.Context) (string, error) {
			return "ok", nil
		},
		Invalidate: []Key{other},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, StateSettled, c.State(key))
	assert.True(t, c.IsStale(key))
	assert.True(t, c.IsStale(other))

	fetched := 0
	v, err := Query(context.Background(), c, key, func(context.Context) ([]item, error) {
		fetched++
		return []item{{ID: 1, IsRead: true}, {ID: 3}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	assert.Len(t, v, 2)
	assert.Equal(t, StateIdle, c.State(key))
}

func TestMutate_NoCachedValue(t *testing.T) {
	c := NewCache()
	called := false
	_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
		Key: Key{"empty"},
		Optimistic: func(cur []item) []item {
			called = true
			return cur
		},
		Mutate: func(ctx context.Context) (struct{}, error) { return struct{}{}, nil },
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestMutate_CancelsInFlightFetch(t *testing.T) {
	c := NewCache()
	key := Key{"meetings", "1"}
	SetData(c, key, []item{{ID: 1}})
	c.Invalidate(key)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan []item)
	go func() {
		v, _ := Query(context.Background(), c, key, func(context.Context) ([]item, error) {
			close(started)
			<-release
			return []item{{ID: 1}}, nil
		})
		done <- v
	}()
	<-started

	remote := errors.New("offline")
	_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
		Key:        key,
		Optimistic: markRead(1),
		Mutate: func(ctx context.Context) (struct{}, error) {
			// 乐观更新期间旧请求返回，不能覆盖补丁
			close(release)
			v := <-done
			assert.True(t, v[0].IsRead)
			got, _ := GetData[[]item](c, key)
			assert.True(t, got[0].IsRead)
			return struct{}{}, remote
		},
	})
	assert.ErrorIs(t, err, remote)

	got, _ := GetData[[]item](c, key)
	assert.False(t, got[0].IsRead)
	assert.True(t, c.IsStale(key))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "rolled-back", StateRolledBack.String())
	assert.Equal(t, "settled", StateSettled.String())
}

func TestMutate_ScopePatchesEveryCachedEntry(t *testing.T) {
	c := NewCache()
	all := Key{"announcements", "all"}
	news := Key{"announcements", "news"}
	other := Key{"prayers", "all"}
	SetData(c, all, []item{{ID: 1}, {ID: 2}})
	SetData(c, news, []item{{ID: 1}})
	SetData(c, other, []item{{ID: 1}})

	remote := errors.New("offline")
	_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
		Key:        all,
		Scope:      Key{"announcements"},
		Optimistic: markRead(1),
		Mutate: func(ctx context.Context) (struct{}, error) {
			for _, k := range []Key{all, news} {
				v, ok := GetData[[]item](c, k)
				require.True(t, ok)
				assert.True(t, v[0].IsRead, k.String())
				assert.Equal(t, StatePatched, c.State(k))
			}
			v, _ := GetData[[]item](c, other)
			assert.False(t, v[0].IsRead)
			return struct{}{}, remote
		},
	})
	assert.ErrorIs(t, err, remote)

	got, _ := GetData[[]item](c, all)
	assert.Equal(t, []item{{ID: 1}, {ID: 2}}, got)
	got, _ = GetData[[]item](c, news)
	assert.Equal(t, []item{{ID: 1}}, got)
	assert.Equal(t, StateRolledBack, c.State(news))
	assert.Equal(t, StateIdle, c.State(other))
}

func TestMutate_ScopeDiscardsInFlightFetch(t *testing.T) {
	c := NewCache()
	all := Key{"announcements", "all"}
	news := Key{"announcements", "news"}
	SetData(c, all, []item{{ID: 1}})
	SetData(c, news, []item{{ID: 1}})
	c.Invalidate(news)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Query(context.Background(), c, news, func(context.Context) ([]item, error) {
			close(started)
			<-release
			return []item{{ID: 1}}, nil
		})
	}()
	<-started

	_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
		Key:        all,
		Scope:      Key{"announcements"},
		Optimistic: markRead(1),
		Mutate: func(ctx context.Context) (struct{}, error) {
			close(release)
			<-done
			v, _ := GetData[[]item](c, news)
			assert.True(t, v[0].IsRead)
			return struct{}{}, nil
		},
	})
	require.NoError(t, err)
	assert.True(t, c.IsStale(news))
	assert.Equal(t, StateSettled, c.State(news))
}

func TestMutate_SettledAfterInvalidation(t *testing.T) {
	c := NewCache()
	key := Key{"announcements", "all"}
	SetData(c, key, []item{{ID: 1}})

	var states []State
	var stale []bool
	c.Subscribe(key, func() {
		states = append(states, c.State(key))
		stale = append(stale, c.IsStale(key))
	})

	_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
		Key:        key,
		Optimistic: markRead(1),
		Mutate:     func(ctx context.Context) (struct{}, error) { return struct{}{}, nil },
	})
	require.NoError(t, err)
	// 失效通知发出时尚未 settled
	assert.Equal(t, []State{StatePatched, StatePatched}, states)
	assert.Equal(t, []bool{false, true}, stale)
	assert.Equal(t, StateSettled, c.State(key))
}

func TestMutate_ConcurrentOnSameKey(t *testing.T) {
	key := Key{"announcements", "all"}
	remote := errors.New("permission denied")

	t.Run("late rollback after a confirmed write stays stale", func(t *testing.T) {
		c := NewCache()
		SetData(c, key, []item{{ID: 1}, {ID: 2}})

		inA := make(chan struct{})
		failA := make(chan struct{})
		errA := make(chan error, 1)
		go func() {
			_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
				Key:        key,
				Optimistic: markRead(1),
				Mutate: func(ctx context.Context) (struct{}, error) {
					close(inA)
					<-failA
					return struct{}{}, remote
				},
			})
			errA <- err
		}()
		<-inA

		_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
			Key:        key,
			Optimistic: markRead(2),
			Mutate: func(ctx context.Context) (struct{}, error) {
				v, _ := GetData[[]item](c, key)
				assert.True(t, v[0].IsRead)
				assert.True(t, v[1].IsRead)
				return struct{}{}, nil
			},
		})
		require.NoError(t, err)
		close(failA)
		assert.ErrorIs(t, <-errA, remote)

		// A 回滚到自己的快照，但 B 的失效仍然有效：下次读取重拉服务端结果
		v, _ := GetData[[]item](c, key)
		assert.Equal(t, []item{{ID: 1}, {ID: 2}}, v)
		assert.True(t, c.IsStale(key))
		got, err := Query(context.Background(), c, key, func(context.Context) ([]item, error) {
			return []item{{ID: 1}, {ID: 2, IsRead: true}}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []item{{ID: 1}, {ID: 2, IsRead: true}}, got)
	})

	t.Run("rollback after the other write failed restores its snapshot", func(t *testing.T) {
		c := NewCache()
		SetData(c, key, []item{{ID: 1}, {ID: 2}})

		inA := make(chan struct{})
		finishA := make(chan struct{})
		errA := make(chan error, 1)
		go func() {
			_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
				Key:        key,
				Optimistic: markRead(1),
				Mutate: func(ctx context.Context) (struct{}, error) {
					close(inA)
					<-finishA
					return struct{}{}, nil
				},
			})
			errA <- err
		}()
		<-inA

		// B 的快照里已有 A 的补丁，B 失败后回到 A 的补丁
		_, err := Mutate(context.Background(), c, Mutation[[]item, struct{}]{
			Key:        key,
			Optimistic: markRead(2),
			Mutate:     func(ctx context.Context) (struct{}, error) { return struct{}{}, remote },
		})
		assert.ErrorIs(t, err, remote)
		v, _ := GetData[[]item](c, key)
		assert.Equal(t, []item{{ID: 1, IsRead: true}, {ID: 2}}, v)

		close(finishA)
		require.NoError(t, <-errA)
		assert.True(t, c.IsStale(key))
		assert.Equal(t, StateSettled, c.State(key))
	})
}
