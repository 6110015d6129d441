package authapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPLimiter_AllowAndRefill(t *testing.T) {
	l := newIPLimiter(60, 2, time.Minute) // one token per second
	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if ok, _ := l.allow("10.0.0.1", now); !ok {
			t.Fatalf("burst request %d refused", i)
		}
	}

	ok, retry := l.allow("10.0.0.1", now)
	if ok {
		t.Fatalf("expected refusal after burst")
	}
	if retry != time.Second {
		t.Fatalf("retry=%v, want 1s", retry)
	}

	if ok, _ := l.allow("10.0.0.2", now); !ok {
		t.Fatalf("buckets must be per IP")
	}

	if ok, _ := l.allow("10.0.0.1", now.Add(time.Second)); !ok {
		t.Fatalf("expected a refilled token after 1s")
	}
}

func TestIPLimiter_Sweep(t *testing.T) {
	l := newIPLimiter(60, 1, time.Minute)
	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)

	l.allow("10.0.0.1", now)
	l.allow("10.0.0.2", now.Add(50*time.Second))

	if n := l.sweep(now.Add(90 * time.Second)); n != 1 {
		t.Fatalf("evicted=%d, want 1", n)
	}
	if l.size() != 1 {
		t.Fatalf("size=%d, want 1", l.size())
	}
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	f := newAuthFixture(t, Config{RatePerMinute: 10, RateBurst: 1, LimiterIdleTTL: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.h.RunJanitor(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("janitor did not stop")
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remote     string
		xff        string
		trustProxy bool
		want       string
	}{
		{"remote addr", "203.0.113.7:4711", "", false, "203.0.113.7"},
		{"xff ignored without trust", "203.0.113.7:4711", "198.51.100.9", false, "203.0.113.7"},
		{"xff first hop", "10.0.0.1:80", "198.51.100.9, 10.0.0.1", true, "198.51.100.9"},
		{"bad xff falls back", "10.0.0.1:80", "garbage", true, "10.0.0.1"},
		{"ipv6", "[2001:db8::1]:443", "", false, "2001:db8::1"},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = tc.remote
		if tc.xff != "" {
			r.Header.Set("X-Forwarded-For", tc.xff)
		}
		if got := clientIP(r, tc.trustProxy); got != tc.want {
			t.Fatalf("%s: clientIP=%q want %q", tc.name, got, tc.want)
		}
	}
}
