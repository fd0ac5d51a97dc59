// Package cache — кэш "get-or-refresh" с TTL.
//
// Значения считаются неизменяемыми: при обновлении запись заменяется новым
// значением, уже выданные вызывающим объекты не трогаются.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader загружает свежее значение для ключа.
type Loader[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value   V
	updated time.Time
}

// TTL — потокобезопасный кэш с временем жизни записи; ttl <= 0 отключает кэширование.
// Параллельные обновления одного ключа схлопываются в одну загрузку.
type TTL[K comparable, V any] struct {
	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[K]entry[V]
	group   singleflight.Group
}

func New[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[K]entry[V]),
	}
}

// WithClock подменяет часы (для тестов).
func (c *TTL[K, V]) WithClock(now func() time.Time) *TTL[K, V] {
	c.now = now
	return c
}

// WithLoadTimeout ограничивает одну загрузку. Загрузка общая для всех
// ждущих вызовов, поэтому отмена контекста вызывающего её не прерывает;
// 0 — без отдельного лимита.
func (c *TTL[K, V]) WithLoadTimeout(d time.Duration) *TTL[K, V] {
	c.loadTimeout = d
	return c
}

// Get возвращает значение, если оно есть и не протухло.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetOrRefresh отдаёт живое значение из кэша или вызывает load.
// Ошибки загрузки не кэшируются. Каждый вызов ждёт результат не дольше
// своего ctx; сама загрузка идёт под context.WithoutCancel(ctx).
func (c *TTL[K, V]) GetOrRefresh(ctx context.Context, key K, load Loader[V]) (V, error) {
	var zero V
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(fmt.Sprint(key), func() (any, error) {
		// пока ждали очередь, значение мог положить другой вызов
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		lctx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, c.loadTimeout)
			defer cancel()
		}
		v, err := load(lctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Val.(V), nil
	}
}

// Set кладёт значение с текущим временем обновления.
func (c *TTL[K, V]) Set(key K, v V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: v, updated: c.now()}
	c.mu.Unlock()
}

func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *TTL[K, V]) Purge() {
	c.mu.Lock()
	c.entries = make(map[K]entry[V])
	c.mu.Unlock()
}

func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTL[K, V]) expired(e entry[V]) bool {
	return c.ttl <= 0 || !c.now().Before(e.updated.Add(c.ttl))
}
