package sequence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type counters struct {
	mu     sync.Mutex
	values map[string]int64
	codes  map[string]string
	err    error
}

func newCounters() *counters {
	return &counters{values: map[string]int64{}, codes: map[string]string{}}
}

func (c *counters) Allocate(_ context.Context, scope string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.values[scope]++
	return c.values[scope], nil
}

func (c *counters) Raise(_ context.Context, scope string, atLeast int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values[scope] < atLeast {
		c.values[scope] = atLeast
	}
	return nil
}

func (c *counters) MaxCode(_ context.Context, table, _ string, prefix string) (string, error) {
	code := c.codes[table]
	if strings.HasPrefix(code, prefix) {
		return code, nil
	}
	return "", nil
}

func fixedClock() time.Time {
	return time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)
}

func TestGenerator_MonotonicPerYear(t *testing.T) {
	g := NewGenerator(newCounters(), nil).WithClock(fixedClock)
	ctx := context.Background()

	want := []string{"FRT-2026-001", "FRT-2026-002", "FRT-2026-003"}
	for i, w := range want {
		if got := g.Next(ctx, Freight); got != w {
			t.Errorf("Next() #%d = %q, want %q", i, got, w)
		}
	}
}

func TestGenerator_ScopesAreIndependent(t *testing.T) {
	g := NewGenerator(newCounters(), nil).WithClock(fixedClock)
	ctx := context.Background()

	g.Next(ctx, Freight)
	g.Next(ctx, Freight)

	if got := g.Next(ctx, Payment); got != "PAG-2026-001" {
		t.Errorf("Next(Payment) = %q, want PAG-2026-001", got)
	}
	if got := g.Next(ctx, Vehicle); got != "FROTA-001" {
		t.Errorf("Next(Vehicle) = %q, want FROTA-001", got)
	}
	if got := g.Next(ctx, Farm); got != "FAZ-000001" {
		t.Errorf("Next(Farm) = %q, want FAZ-000001", got)
	}
	if got := g.Next(ctx, User); got != "u1" {
		t.Errorf("Next(User) = %q, want u1", got)
	}
}

func TestGenerator_NewYearRestarts(t *testing.T) {
	c := newCounters()
	now := fixedClock()
	g := NewGenerator(c, nil).WithClock(func() time.Time { return now })
	ctx := context.Background()

	g.Next(ctx, Freight)
	now = now.AddDate(1, 0, 0)

	if got := g.Next(ctx, Freight); got != "FRT-2027-001" {
		t.Errorf("Next() = %q, want FRT-2027-001", got)
	}
}

func TestGenerator_FallbackOnAllocatorFailure(t *testing.T) {
	c := newCounters()
	c.err = errors.New("connection refused")
	g := NewGenerator(c, nil).WithClock(fixedClock)

	got := g.Next(context.Background(), Freight)

	wantPrefix := "FRT-1792317600000-"
	if !strings.HasPrefix(got, wantPrefix) || len(got) != len(wantPrefix)+5 {
		t.Errorf("Next() = %q, want %s<5 digits>", got, wantPrefix)
	}
}

func TestFormat_WidensPastPad(t *testing.T) {
	if got := YearCode("FRT", 2026, 1234); got != "FRT-2026-1234" {
		t.Errorf("YearCode() = %q, want FRT-2026-1234", got)
	}
}

func TestFormat_UserShortID(t *testing.T) {
	if got := UserShortID("USR", 2026, 7); got != "u7" {
		t.Errorf("UserShortID() = %q, want u7", got)
	}
	if got := User.Format(User.Prefix, 2026, 120); got != "u120" {
		t.Errorf("User.Format() = %q, want u120", got)
	}
}

func TestNextFromMax(t *testing.T) {
	cases := []struct {
		last string
		want string
	}{
		{"", "FRT-2026-001"},
		{"FRT-2026-009", "FRT-2026-010"},
		{"FRT-2026-999", "FRT-2026-1000"},
		{"FRT-2025-120", "FRT-2026-001"},
		{"FRT-2026-abc", "FRT-2026-001"},
	}
	for _, tc := range cases {
		if got := NextFromMax(tc.last, "FRT", 2026); got != tc.want {
			t.Errorf("NextFromMax(%q) = %q, want %q", tc.last, got, tc.want)
		}
	}
}

func TestSuffix(t *testing.T) {
	if n, ok := Suffix("FROTA-042"); !ok || n != 42 {
		t.Errorf("Suffix(FROTA-042) = %d, %v, want 42, true", n, ok)
	}
	if _, ok := Suffix("FROTA-"); ok {
		t.Errorf("Suffix(FROTA-) ok = true, want false")
	}
}

func TestReconcile_RaisesFromStoredCodes(t *testing.T) {
	c := newCounters()
	c.codes["fretes"] = "FRT-2026-041"
	c.codes["frota"] = "FROTA-007"
	c.codes["pagamentos"] = "PAG-2025-300"
	ctx := context.Background()

	if err := Reconcile(ctx, c, Targets, fixedClock(), nil); err != nil {
		t.Fatalf("Reconcile() error = %v, want nil", err)
	}

	g := NewGenerator(c, nil).WithClock(fixedClock)
	if got := g.Next(ctx, Freight); got != "FRT-2026-042" {
		t.Errorf("Next(Freight) = %q, want FRT-2026-042", got)
	}
	if got := g.Next(ctx, Vehicle); got != "FROTA-008" {
		t.Errorf("Next(Vehicle) = %q, want FROTA-008", got)
	}
	if got := g.Next(ctx, Payment); got != "PAG-2026-001" {
		t.Errorf("Next(Payment) = %q, want PAG-2026-001", got)
	}
}

func TestReconcile_IgnoresFallbackCodes(t *testing.T) {
	c := newCounters()
	c.codes["frota"] = Fallback(Vehicle.Prefix, fixedClock())
	c.codes["fazendas"] = "FAZ-1792317600000-00042"
	ctx := context.Background()

	if err := Reconcile(ctx, c, Targets, fixedClock(), nil); err != nil {
		t.Fatalf("Reconcile() error = %v, want nil", err)
	}

	g := NewGenerator(c, nil).WithClock(fixedClock)
	if got := g.Next(ctx, Vehicle); got != "FROTA-001" {
		t.Errorf("Next(Vehicle) = %q, want FROTA-001", got)
	}
	if got := g.Next(ctx, Farm); got != "FAZ-000001" {
		t.Errorf("Next(Farm) = %q, want FAZ-000001", got)
	}
}
