package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	// Create a mini Redis server for testing
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	cache, err := NewCache(mr.Host(), mr.Server().Addr().Port, "", 0)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create cache: %v", err)
	}

	return cache, mr
}

func TestNewCache(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	if err := cache.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewCacheUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	host, port := mr.Host(), mr.Server().Addr().Port
	mr.Close()

	if _, err := NewCache(host, port, "", 0); err == nil {
		t.Error("Expected an error for a closed server")
	}
}

func TestCache_ChannelStats(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()

	miss, err := cache.GetChannelStats(ctx, "channel-1")
	if err != nil {
		t.Fatalf("GetChannelStats failed: %v", err)
	}
	if miss != nil {
		t.Fatal("Expected a cache miss")
	}

	stats := &models.ChannelStats{TotalVideos: 3, TotalViews: 120, TotalSubscribers: 7}
	if err := cache.SetChannelStats(ctx, "channel-1", stats, time.Minute); err != nil {
		t.Fatalf("SetChannelStats failed: %v", err)
	}

	got, err := cache.GetChannelStats(ctx, "channel-1")
	if err != nil {
		t.Fatalf("GetChannelStats failed: %v", err)
	}
	if got == nil || *got != *stats {
		t.Errorf("Expected %+v, got %+v", stats, got)
	}

	mr.FastForward(2 * time.Minute)
	got, _ = cache.GetChannelStats(ctx, "channel-1")
	if got != nil {
		t.Error("Expected stats to expire")
	}

	_ = cache.SetChannelStats(ctx, "channel-1", stats, time.Minute)
	if err := cache.InvalidateChannelStats(ctx, "channel-1"); err != nil {
		t.Fatalf("InvalidateChannelStats failed: %v", err)
	}
	if got, _ := cache.GetChannelStats(ctx, "channel-1"); got != nil {
		t.Error("Expected stats to be invalidated")
	}
}

func TestCache_RateLimit(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := cache.CheckRateLimit(ctx, "login:1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit failed: %v", err)
		}
		if !ok {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}

	ok, _ := cache.CheckRateLimit(ctx, "login:1.2.3.4", 3, time.Minute)
	if ok {
		t.Error("Fourth request should be limited")
	}

	mr.FastForward(2 * time.Minute)
	ok, _ = cache.CheckRateLimit(ctx, "login:1.2.3.4", 3, time.Minute)
	if !ok {
		t.Error("Limit should reset after the window")
	}

	_ = cache.ResetRateLimit(ctx, "login:1.2.3.4")
	if exists, _ := cache.Exists(ctx, "ratelimit:login:1.2.3.4"); exists {
		t.Error("Expected counter to be cleared")
	}
}

func TestCache_Locks(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()

	token, ok, err := cache.AcquireLock(ctx, "like:video:1:user:1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("AcquireLock failed: ok=%v err=%v", ok, err)
	}

	if _, ok, _ := cache.AcquireLock(ctx, "like:video:1:user:1", time.Minute); ok {
		t.Fatal("Second acquire should fail")
	}

	// A stale token must not release someone else's lock
	if err := cache.ReleaseLock(ctx, "like:video:1:user:1", "stale"); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	if exists, _ := cache.Exists(ctx, "lock:like:video:1:user:1"); !exists {
		t.Fatal("Lock released by a stale token")
	}

	if err := cache.ReleaseLock(ctx, "like:video:1:user:1", token); err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	if exists, _ := cache.Exists(ctx, "lock:like:video:1:user:1"); exists {
		t.Fatal("Lock still held after release")
	}
}

func TestCache_WithLockSerializes(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := cache.WithLock(ctx, "toggle", time.Second, func() error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			if err != nil {
				t.Errorf("WithLock failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("Expected at most one holder, saw %d", maxInside)
	}
}

func TestCache_WithLockBusy(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()
	if _, ok, _ := cache.AcquireLock(ctx, "busy", time.Minute); !ok {
		t.Fatal("AcquireLock failed")
	}

	called := false
	err := cache.WithLock(ctx, "busy", time.Minute, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrLockBusy) {
		t.Errorf("Expected ErrLockBusy, got %v", err)
	}
	if called {
		t.Error("fn must not run without the lock")
	}
}

func TestCache_WithLockReturnsFnError(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	boom := errors.New("boom")
	err := cache.WithLock(context.Background(), "r", time.Second, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Expected fn error, got %v", err)
	}
	if exists, _ := cache.Exists(context.Background(), "lock:r"); exists {
		t.Error("Lock must be released after fn returns")
	}
}
