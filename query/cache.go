package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const defaultStaleTime = 30 * time.Second

// ErrCanceled 请求被 Cancel/Invalidate 作废，且缓存中没有可用值
var ErrCanceled = errors.New("query canceled")

// State 缓存条目状态
type State int

const (
	StateIdle State = iota
	StatePatched
	StateSettled
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatched:
		return "patched"
	case StateSettled:
		return "settled"
	case StateRolledBack:
		return "rolled-back"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type entry struct {
	key       Key
	value     any
	has       bool
	updatedAt time.Time
	stale     bool
	state     State
	// invalidations 每次 Invalidate 自增，回滚时据此判断快照之后是否有别的写已确认
	invalidations uint64

	// gen 每次 Cancel 自增，旧 gen 的请求结果直接丢弃
	gen    uint64
	cancel context.CancelFunc
}

type subscription struct {
	key Key
	fns map[int]func()
}

// Cache 按 Key 缓存远端查询结果，并提供乐观更新所需的快照/回滚能力。
// 锁只保护内存结构，fetch 在锁外执行。
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	subs      map[string]*subscription
	nextSubID int
	group     singleflight.Group

	staleTime time.Duration
	now       func() time.Time
}

type Option func(*Cache)

// WithStaleTime 数据新鲜期，过期后下一次 Query 会重新拉取
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.staleTime = d
		}
	}
}

// WithClock 测试用
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[string]*entry),
		subs:      make(map[string]*subscription),
		staleTime: defaultStaleTime,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) entryLocked(key Key) *entry {
	k := key.String()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{key: append(Key(nil), key...)}
		c.entries[k] = e
	}
	return e
}

func (c *Cache) freshLocked(e *entry) bool {
	return e.has && !e.stale && c.now().Sub(e.updatedAt) < c.staleTime
}

// Query 读取缓存；缺失或过期时调用 fetch 拉取。
// 同一 Key 同一代的并发请求只会执行一次 fetch。
// 调用方 ctx 取消只影响等待，不会中断已发出的请求；中断请求只能通过 Cancel。
func Query[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	e := c.entryLocked(key)
	if c.freshLocked(e) {
		v, ok := e.value.(T)
		c.mu.Unlock()
		if !ok {
			return zero, fmt.Errorf("query %s: cached value has type %T", key, e.value)
		}
		return v, nil
	}
	gen := e.gen
	c.mu.Unlock()

	flightKey := fmt.Sprintf("%s#%d", key, gen)
	ch := c.group.DoChan(flightKey, func() (any, error) {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()

		c.mu.Lock()
		if e.gen != gen {
			c.mu.Unlock()
			return nil, ErrCanceled
		}
		e.cancel = cancel
		c.mu.Unlock()

		v, err := fetch(fctx)

		c.mu.Lock()
		if e.gen != gen {
			c.mu.Unlock()
			log.Debug().Str("key", key.String()).Msg("discard superseded fetch result")
			return nil, ErrCanceled
		}
		e.cancel = nil
		if err != nil {
			c.mu.Unlock()
			return nil, err
		}
		e.value = v
		e.has = true
		e.updatedAt = c.now()
		e.stale = false
		e.state = StateIdle
		c.mu.Unlock()

		c.notify(key)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if errors.Is(res.Err, ErrCanceled) {
			// 被乐观更新等操作作废：返回当前缓存值（如果有）
			if v, ok := GetData[T](c, key); ok {
				return v, nil
			}
			return zero, ErrCanceled
		}
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("query %s: fetched value has type %T", key, res.Val)
		}
		return v, nil
	}
}

// Prefetch 预先拉取，不关心结果
func Prefetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) error {
	_, err := Query(ctx, c, key, fetch)
	return err
}

// Refetch 忽略新鲜期强制重拉 key（只作用于这一条，不按前缀）。
// 进行中的旧请求被作废。
func Refetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if e, ok := c.entries[key.String()]; ok {
		e.stale = true
		c.cancelLocked(e)
	}
	c.mu.Unlock()
	return Query(ctx, c, key, fetch)
}

// GetData 只读缓存，不触发请求
func GetData[T any](c *Cache, key Key) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || !e.has {
		return zero, false
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// SetData 直接写入缓存（视为新鲜数据）
func SetData[T any](c *Cache, key Key, v T) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.value = v
	e.has = true
	e.updatedAt = c.now()
	e.stale = false
	c.mu.Unlock()
	c.notify(key)
}

// State 条目当前状态，不存在时为 StateIdle
func (c *Cache) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok {
		return e.state
	}
	return StateIdle
}

// IsStale 条目是否需要重新拉取
func (c *Cache) IsStale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return true
	}
	return !c.freshLocked(e)
}

// Cancel 作废 key 上正在进行的请求，晚到的结果不会写入缓存
func (c *Cache) Cancel(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok {
		c.cancelLocked(e)
	}
}

func (c *Cache) cancelLocked(e *entry) {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Invalidate 把前缀匹配的条目标记为过期并作废进行中的请求，然后通知订阅者
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	var hit []Key
	for _, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.stale = true
		e.invalidations++
		c.cancelLocked(e)
		hit = append(hit, e.key)
	}
	for _, s := range c.subs {
		if s.key.HasPrefix(prefix) {
			hit = append(hit, s.key)
		}
	}
	c.mu.Unlock()

	seen := make(map[string]struct{}, len(hit))
	for _, k := range hit {
		if _, ok := seen[k.String()]; ok {
			continue
		}
		seen[k.String()] = struct{}{}
		c.notify(k)
	}
}

// Subscribe key 的数据变化（写入、乐观更新、回滚、失效）时回调 fn。
// 回调在锁外同步执行。返回取消订阅函数。
func (c *Cache) Subscribe(key Key, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	s, ok := c.subs[k]
	if !ok {
		s = &subscription{key: append(Key(nil), key...), fns: make(map[int]func())}
		c.subs[k] = s
	}
	c.nextSubID++
	id := c.nextSubID
	s.fns[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if s, ok := c.subs[k]; ok {
			delete(s.fns, id)
			if len(s.fns) == 0 {
				delete(c.subs, k)
			}
		}
	}
}

func (c *Cache) notify(key Key) {
	c.mu.Lock()
	s, ok := c.subs[key.String()]
	var fns []func()
	if ok {
		fns = make([]func(), 0, len(s.fns))
		for _, fn := range s.fns {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Clear 清空全部缓存（会话结束时调用），订阅保留
func (c *Cache) Clear() {
	c.mu.Lock()
	for _, e := range c.entries {
		c.cancelLocked(e)
	}
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}
