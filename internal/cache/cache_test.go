package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type brokenCache struct{ Nop }

func (brokenCache) Get(context.Context, string, any) error { return errors.New("connection reset") }

func (brokenCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("connection reset")
}

type totals struct {
	Revenue float64 `json:"receitaTotal"`
}

func TestRemember_ComputesThenHits(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	calls := 0
	compute := func(context.Context) (totals, error) {
		calls++
		return totals{Revenue: 1200}, nil
	}

	got, hit, err := Remember(ctx, c, nil, "dashboard:kpis", time.Minute, compute)
	if err != nil || hit || got.Revenue != 1200 {
		t.Fatalf("first Remember() = %v, %v, %v, want computed value", got, hit, err)
	}

	got, hit, err = Remember(ctx, c, nil, "dashboard:kpis", time.Minute, compute)
	if err != nil || !hit || got.Revenue != 1200 {
		t.Fatalf("second Remember() = %v, %v, %v, want cached value", got, hit, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestRemember_CacheFailureStillServes(t *testing.T) {
	got, hit, err := Remember(context.Background(), brokenCache{}, nil, "k", time.Minute,
		func(context.Context) (totals, error) { return totals{Revenue: 7}, nil })

	if err != nil {
		t.Fatalf("Remember() error = %v, want nil", err)
	}
	if hit || got.Revenue != 7 {
		t.Errorf("Remember() = %v, %v, want computed value", got, hit)
	}
}

func TestRemember_ComputeErrorReturned(t *testing.T) {
	boom := errors.New("query failed")
	_, _, err := Remember(context.Background(), Nop{}, nil, "k", time.Minute,
		func(context.Context) (totals, error) { return totals{}, boom })

	if !errors.Is(err, boom) {
		t.Errorf("Remember() error = %v, want %v", err, boom)
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatal(err)
	}

	var v int
	if err := m.Get(ctx, "k", &v); err != nil || v != 1 {
		t.Fatalf("Get() = %d, %v, want 1, nil", v, err)
	}

	now = now.Add(time.Minute)
	if err := m.Get(ctx, "k", &v); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() after ttl error = %v, want ErrMiss", err)
	}
}

func TestNewRedis_BadURL(t *testing.T) {
	if _, err := NewRedis("http://localhost"); err == nil {
		t.Errorf("NewRedis() error = nil, want error")
	}
}
