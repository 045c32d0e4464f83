// Package sequence generates the human-readable codes of the entities
// ("FRT-2026-001", "FROTA-001", ...) from per-scope counters.
package sequence

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/gestao-fretes/internal/logger"
)

const component = "Sequence"

// Allocator hands out strictly increasing numbers per scope, starting
// at 1.
type Allocator interface {
	Allocate(ctx context.Context, scope string) (int64, error)
}

// Kind describes how codes of one entity type are scoped and printed.
type Kind struct {
	Prefix string
	// Yearly kinds restart numbering every calendar year.
	Yearly bool
	Format func(prefix string, year int, n int64) string
}

var (
	Freight    = Kind{Prefix: "FRT", Yearly: true, Format: YearCode}
	Payment    = Kind{Prefix: "PAG", Yearly: true, Format: YearCode}
	Driver     = Kind{Prefix: "MOT", Yearly: true, Format: YearCode}
	Attachment = Kind{Prefix: "ANX", Yearly: true, Format: YearCode}
	Vehicle    = Kind{Prefix: "FROTA", Format: FleetCode}
	Farm       = Kind{Prefix: "FAZ", Format: GeneralCode}
	User       = Kind{Prefix: "USR", Format: UserShortID}
)

// Scope is the counter key for kind in the given year.
func (k Kind) Scope(year int) string {
	if k.Yearly {
		return fmt.Sprintf("%s-%d", k.Prefix, year)
	}
	return k.Prefix
}

// YearCode prints PREFIX-YYYY-NNN.
func YearCode(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, n)
}

// FleetCode prints PREFIX-NNN.
func FleetCode(prefix string, _ int, n int64) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

// GeneralCode prints PREFIX-NNNNNN.
func GeneralCode(prefix string, _ int, n int64) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

// UserShortID prints the unprefixed short id "u<n>".
func UserShortID(_ string, _ int, n int64) string {
	return "u" + strconv.FormatInt(n, 10)
}

// Fallback builds a code from the clock and a random suffix. It is only
// unique with high probability.
func Fallback(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, now.UnixMilli(), rand.Intn(100000))
}

// Generator formats allocated numbers and degrades to Fallback when the
// allocator fails.
type Generator struct {
	alloc Allocator
	log   *logger.Logger
	now   func() time.Time
}

func NewGenerator(alloc Allocator, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{alloc: alloc, log: log, now: time.Now}
}

// WithClock replaces the generator's time source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Next returns the next code for kind.
func (g *Generator) Next(ctx context.Context, kind Kind) string {
	now := g.now()
	year := now.Year()

	n, err := g.alloc.Allocate(ctx, kind.Scope(year))
	if err != nil {
		code := Fallback(kind.Prefix, now)
		g.log.Warn(component, "counter unavailable for %s, using fallback code %s: %v", kind.Scope(year), code, err)
		return code
	}
	return kind.Format(kind.Prefix, year, n)
}

// Suffix parses the trailing numeric segment of code.
func Suffix(code string) (int64, bool) {
	i := strings.LastIndexByte(code, '-')
	if i < 0 || i == len(code)-1 {
		return 0, false
	}
	n, err := strconv.ParseInt(code[i+1:], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextFromMax derives the next yearly code from the largest existing one.
// An empty or foreign lastCode starts the year at 001.
//
// Deprecated: racy under concurrent creation; use Generator. Kept to
// reconcile counters with codes written before counters existed.
func NextFromMax(lastCode, prefix string, year int) string {
	scope := fmt.Sprintf("%s-%d-", prefix, year)
	if !strings.HasPrefix(lastCode, scope) {
		return YearCode(prefix, year, 1)
	}
	n, ok := Suffix(lastCode)
	if !ok {
		return YearCode(prefix, year, 1)
	}
	return YearCode(prefix, year, n+1)
}
