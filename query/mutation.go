package query

import (
	"context"
	"time"
)

// Mutation 一次远端写操作及其对缓存的影响。
//
//   - Key: 乐观更新作用的查询键
//   - Scope: 可选前缀，前缀下所有已缓存的条目也按 Optimistic 打补丁
//     （例如同一公告出现在“全部”和按类型过滤的列表里）
//   - Optimistic: 根据当前缓存值计算乐观值；必须返回新值，不能原地修改 current
//     （回滚依赖快照里的原值）。为 nil 表示不做乐观更新。
//   - Mutate: 远端写
//   - Invalidate: 成功后额外需要失效的前缀
type Mutation[T, R any] struct {
	Key        Key
	Scope      Key
	Optimistic func(current T) T
	Mutate     func(ctx context.Context) (R, error)
	Invalidate []Key
}

type snapshot struct {
	key       Key
	value     any
	has       bool
	updatedAt time.Time
	stale     bool

	invalidations uint64
}

// Mutate 执行乐观写：
// cancel 进行中的请求 -> 快照 -> 乐观补丁（同一把锁内完成）-> 远端写
// -> 失败回滚到快照 / 成功失效后置为 settled。
// 远端错误原样返回。
// 同一 key 上的并发写互不感知，以最后一次失效后的重拉结果为准。
func Mutate[T, R any](ctx context.Context, c *Cache, m Mutation[T, R]) (R, error) {
	snaps := c.beginMutation(m.Key, m.Scope, func(v any) (any, bool) {
		if m.Optimistic == nil {
			return nil, false
		}
		cur, ok := v.(T)
		if !ok {
			return nil, false
		}
		return m.Optimistic(cur), true
	})

	res, err := m.Mutate(ctx)
	if err != nil {
		c.restore(snaps)
		return res, err
	}

	c.Invalidate(m.Key)
	if m.Scope != nil {
		c.Invalidate(m.Scope)
	}
	for _, k := range m.Invalidate {
		c.Invalidate(k)
	}
	c.settle(snaps)
	return res, nil
}

// beginMutation 作废目标条目上的请求、拍快照并打补丁，全程持锁，
// 期间发出的请求拿到的是新 gen，结果也会在补丁之后被丢弃。
func (c *Cache) beginMutation(key, scope Key, apply func(any) (any, bool)) []snapshot {
	c.mu.Lock()
	targets := []*entry{c.entryLocked(key)}
	if scope != nil {
		for _, e := range c.entries {
			if e.has && e.key.HasPrefix(scope) && e.key.String() != key.String() {
				targets = append(targets, e)
			}
		}
	}

	snaps := make([]snapshot, 0, len(targets))
	var patched []Key
	for _, e := range targets {
		c.cancelLocked(e)
		snaps = append(snaps, snapshot{key: e.key, value: e.value, has: e.has, updatedAt: e.updatedAt, stale: e.stale, invalidations: e.invalidations})
		if !e.has {
			continue
		}
		v, ok := apply(e.value)
		if !ok {
			continue
		}
		e.value = v
		e.updatedAt = c.now()
		e.stale = false
		e.state = StatePatched
		patched = append(patched, e.key)
	}
	c.mu.Unlock()

	for _, k := range patched {
		c.notify(k)
	}
	return snaps
}

// restore 恢复快照；期间发出的请求一并作废。
// 快照之后若有其它写已让条目失效，恢复的值保持过期，下次读取重拉。
func (c *Cache) restore(snaps []snapshot) {
	c.mu.Lock()
	for _, snap := range snaps {
		e := c.entryLocked(snap.key)
		c.cancelLocked(e)
		e.value = snap.value
		e.has = snap.has
		e.updatedAt = snap.updatedAt
		e.stale = snap.stale || e.invalidations != snap.invalidations
		e.state = StateRolledBack
	}
	c.mu.Unlock()
	for _, snap := range snaps {
		c.notify(snap.key)
	}
}

func (c *Cache) settle(snaps []snapshot) {
	c.mu.Lock()
	for _, snap := range snaps {
		if e, ok := c.entries[snap.key.String()]; ok {
			e.state = StateSettled
		}
	}
	c.mu.Unlock()
}
