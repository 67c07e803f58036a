package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }
	c.Set("a", "x")
	c.Set("b", "y")

	now = now.Add(2 * time.Minute)
	c.Set("c", "z")
	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired = %d, want 2", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("fresh entry should survive")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("c"); ok {
		t.Error("expired entry should be absent")
	}
}

func TestDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("alice|all", 1)
	c.Set("alice|2024", 2)
	c.Set("alicia|all", 3)
	if n := c.DeletePrefix("alice|"); n != 2 {
		t.Fatalf("DeletePrefix = %d", n)
	}
	if _, ok := c.Get("alicia|all"); !ok {
		t.Fatal("other user's entry removed")
	}
}

func TestLoadingCollapsesConcurrentMisses(t *testing.T) {
	l := NewLoading[int](NewLRUCache[int](10, time.Minute))
	var loads int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get("k", func() (int, error) {
				atomic.AddInt32(&loads, 1)
				<-release
				return 42, nil
			})
			if err != nil || v != 42 {
				t.Errorf("Get = %d, %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n < 1 || n > 10 {
		t.Fatalf("loads = %d", n)
	}
	// now cached
	v, _ := l.Get("k", func() (int, error) { return 0, errors.New("should not load") })
	if v != 42 {
		t.Fatalf("cached value = %d", v)
	}
}

func TestLoadingDropsResultOverlappingInvalidate(t *testing.T) {
	l := NewLoading[int](NewLRUCache[int](10, time.Minute))
	var state int32 = 1
	read := make(chan struct{})
	release := make(chan struct{})

	done := make(chan int)
	go func() {
		v, _ := l.Get("alice|all", func() (int, error) {
			v := int(atomic.LoadInt32(&state))
			close(read)
			<-release
			return v, nil
		})
		done <- v
	}()

	<-read
	atomic.StoreInt32(&state, 2)
	l.Invalidate("alice|")

	// a caller arriving after the write must not share the running load
	fresh, err := l.Get("alice|all", func() (int, error) { return int(atomic.LoadInt32(&state)), nil })
	if err != nil || fresh != 2 {
		t.Fatalf("Get after invalidation = %d, %v, want 2", fresh, err)
	}

	close(release)
	if v := <-done; v != 1 {
		t.Fatalf("overlapping load returned %d, want 1", v)
	}

	v, _ := l.Get("alice|all", func() (int, error) { return 3, nil })
	if v != 2 {
		t.Fatalf("cached value = %d, want 2", v)
	}
}

func TestLoadingDoesNotCacheErrors(t *testing.T) {
	l := NewLoading[int](NewLRUCache[int](10, time.Minute))
	if _, err := l.Get("k", func() (int, error) { return 0, errors.New("boom") }); err == nil {
		t.Fatal("expected error")
	}
	v, err := l.Get("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("Get = %d, %v", v, err)
	}
	l.Invalidate("k")
	v, _ = l.Get("k", func() (int, error) { return 8, nil })
	if v != 8 {
		t.Fatalf("after invalidate = %d", v)
	}
}

func TestManagerStop(t *testing.T) {
	m := NewManager(nil)
	m.Register(NewLRUCache[int](1, time.Millisecond))
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
}
