// Package querycache 进程内的查询缓存
// 以后端路径为键，保证同一键同时只有一个请求在途，并在写操作成功后按键失效
package querycache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// FetchFunc 实际执行请求的函数
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Options 缓存配置
type Options struct {
	StaleTime    time.Duration // 数据新鲜期
	FetchTimeout time.Duration // 共享请求的最长执行时间
	RetryBackoff time.Duration // 首次重试间隔，之后翻倍
	Policy       Policy
	Now          func() time.Time
	Logger       *zerolog.Logger
}

type version struct {
	epoch uint64
	gen   uint64
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// flight 一个在途请求及等待它的调用者数量
// 最后一个调用者离开时取消请求
type flight struct {
	id      uint64
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Cache 并发安全
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*entry
	generations map[string]uint64
	epoch       uint64 // Clear 时递增
	group       singleflight.Group
	flights     map[string]*flight
	flightSeq   uint64

	staleTime    time.Duration
	fetchTimeout time.Duration
	retryBackoff time.Duration
	policy       Policy
	now          func() time.Time
	logger       zerolog.Logger
}

// New 创建缓存，零值的时间字段使用默认值；Policy 原样使用
func New(opts Options) *Cache {
	c := &Cache{
		entries:      make(map[string]*entry),
		generations:  make(map[string]uint64),
		flights:      make(map[string]*flight),
		staleTime:    opts.StaleTime,
		fetchTimeout: opts.FetchTimeout,
		retryBackoff: opts.RetryBackoff,
		policy:       opts.Policy,
		now:          opts.Now,
	}
	if c.staleTime <= 0 {
		c.staleTime = constants.DefaultStaleTime
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = constants.DefaultFetchTimeout
	}
	if c.retryBackoff <= 0 {
		c.retryBackoff = constants.DefaultRetryBackoff
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	} else {
		c.logger = logger.Component("querycache")
	}
	return c
}

// Fetch 返回键对应的数据
// 新鲜的缓存直接返回；否则发起(或加入)该键唯一的在途请求
// ctx 结束时立即返回 ctx.Err()；共享请求在独立的上下文中执行，
// 直到最后一个等待它的调用者离开
func Fetch[T any](ctx context.Context, c *Cache, key string, fn FetchFunc[T]) (T, error) {
	var zero T

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < c.staleTime {
		if v, ok := e.value.(T); ok {
			c.mu.Unlock()
			c.logger.Debug().Str("key", key).Msg("缓存命中")
			return v, nil
		}
	}
	gen := version{epoch: c.epoch, gen: c.generations[key]}
	c.mu.Unlock()

	// 代数不同的请求互不共享，失效之前发起的请求结果不会被之后的调用者拿到
	base := key + "#" + strconv.FormatUint(gen.epoch, 10) + "." + strconv.FormatUint(gen.gen, 10)
	f := c.join(ctx, base)
	defer c.leave(base, f)

	ch := c.group.DoChan(base+"/"+strconv.FormatUint(f.id, 10), func() (any, error) {
		v, err := c.retry(f.ctx, key, func(ctx context.Context) (any, error) {
			return fn(ctx)
		})
		if err != nil {
			return nil, err
		}
		c.store(key, gen, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("缓存键 %s 的数据类型不匹配: %T", key, res.Val)
		}
		return v, nil
	}
}

// join 加入 base 对应的在途请求，没有则创建
func (c *Cache) join(ctx context.Context, base string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[base]
	if !ok {
		c.flightSeq++
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		f = &flight{id: c.flightSeq, ctx: fctx, cancel: cancel}
		c.flights[base] = f
	}
	f.waiters++
	return f
}

// leave 调用者不再等待；没有调用者时取消请求
// 被放弃的请求从表中移除，之后的调用者会发起新的请求而不是加入已取消的请求
func (c *Cache) leave(base string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	if c.flights[base] == f {
		delete(c.flights, base)
	}
	f.cancel()
}

// retry 按策略重试，4xx 和取消立即返回
func (c *Cache) retry(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryBackoff
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = 30 * time.Second
	exp.MaxElapsedTime = 0

	failures := 0
	op := func() (any, error) {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		failures++
		if !c.policy.ShouldRetry(failures, err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Str("key", key).Int("attempt", failures).Dur("wait", wait).Msg("查询失败，准备重试")
	}

	return backoff.RetryNotifyWithData(op, backoff.WithContext(exp, ctx), notify)
}

// store 只有在发起请求后该键没有被失效过时才写入
func (c *Cache) store(key string, gen version, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != gen.epoch || c.generations[key] != gen.gen {
		c.logger.Debug().Str("key", key).Msg("请求期间缓存已失效，丢弃结果")
		return
	}
	c.entries[key] = &entry{value: v, fetchedAt: c.now()}
}

// Mutate 执行写操作，不重试；成功后使列出的键失效
func Mutate[T any](ctx context.Context, c *Cache, fn FetchFunc[T], invalidate ...string) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	c.Invalidate(invalidate...)
	return v, nil
}

// Invalidate 删除缓存并递增代数，下一次 Fetch 必定重新请求
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.generations[key]++
	}
	if len(keys) > 0 {
		c.logger.Debug().Strs("keys", keys).Msg("缓存失效")
	}
}

// Set 直接写入缓存，例如用写操作的响应预填
func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[key]++
	c.entries[key] = &entry{value: v, fetchedAt: c.now()}
}

// Peek 读取缓存而不发起请求，过期的数据也会返回
func Peek[T any](c *Cache, key string) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	v, ok := e.value.(T)
	return v, ok
}

// IsFresh 键是否存在且在新鲜期内
func (c *Cache) IsFresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && c.now().Sub(e.fetchedAt) < c.staleTime
}

// Clear 清空全部缓存，退出登录时使用
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = make(map[string]*entry)
}
