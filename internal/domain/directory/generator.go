package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/greenmission/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxSlugProbes bounds sequential collision probing before falling back to a
// timestamp suffix. The fallback is a pragmatic collision breaker, not a
// cryptographic guarantee.
const maxSlugProbes = 999

// IdentifierStore exposes the identifiers already assigned to business
// records. Implementations query the backing record store; there is no
// transactional guarantee between the existence check and the subsequent
// record write.
type IdentifierStore interface {
	// ListSlugsWithPrefix returns all existing slugs that start with prefix.
	ListSlugsWithPrefix(ctx context.Context, prefix string) ([]string, error)
	// ListBusinessIDsByDate returns all existing business IDs whose date
	// component equals date (YYYYMMDD).
	ListBusinessIDsByDate(ctx context.Context, date string) ([]string, error)
}

// CollisionResolver turns a candidate base slug into one that is not already
// assigned, probing numeric suffixes in order.
type CollisionResolver struct {
	store  IdentifierStore
	clock  shared.Clock
	logger *zap.Logger
}

// NewCollisionResolver creates a CollisionResolver. A nil clock defaults to
// the system clock and a nil logger to a no-op logger.
func NewCollisionResolver(store IdentifierStore, clock shared.Clock, logger *zap.Logger) *CollisionResolver {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollisionResolver{store: store, clock: clock, logger: logger}
}

// Resolve returns base if unused, otherwise the first unused base-N for
// N in 1..999. If probing is exhausted, or the existence query fails, it
// falls back to a timestamp-suffixed slug so record creation can proceed in
// a degraded state rather than fail.
func (r *CollisionResolver) Resolve(ctx context.Context, base string) string {
	existing, err := r.store.ListSlugsWithPrefix(ctx, base)
	if err != nil {
		r.logger.Warn("slug existence query failed, using timestamp fallback",
			zap.String("base", base),
			zap.Error(err))
		return r.timestampSlug(base)
	}

	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}

	if _, ok := taken[base]; !ok {
		return base
	}

	for i := 1; i <= maxSlugProbes; i++ {
		candidate := fitSuffix(base, "-"+strconv.Itoa(i))
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}

	r.logger.Warn("slug collision probing exhausted, using timestamp fallback",
		zap.String("base", base))
	return r.timestampSlug(base)
}

// timestampSlug appends the last six digits of the current unix
// millisecond time to base.
func (r *CollisionResolver) timestampSlug(base string) string {
	suffix := fmt.Sprintf("-%06d", r.clock.Now().UnixMilli()%1_000_000)
	return fitSuffix(base, suffix)
}

// fitSuffix appends suffix to base, trimming base so the result stays within
// the slug length bound.
func fitSuffix(base, suffix string) string {
	if len(base)+len(suffix) > SlugMaxLength {
		base = strings.TrimRight(base[:SlugMaxLength-len(suffix)], "-")
	}
	return base + suffix
}

// BusinessIDGenerator allocates date-scoped sequential business IDs of the
// form GM-YYYYMMDD-NNNN.
type BusinessIDGenerator struct {
	store  IdentifierStore
	clock  shared.Clock
	logger *zap.Logger
}

// NewBusinessIDGenerator creates a BusinessIDGenerator. A nil clock defaults
// to the system clock and a nil logger to a no-op logger.
func NewBusinessIDGenerator(store IdentifierStore, clock shared.Clock, logger *zap.Logger) *BusinessIDGenerator {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BusinessIDGenerator{store: store, clock: clock, logger: logger}
}

// Generate returns the next business ID for the current UTC date: the
// highest existing same-day sequence plus one, or 0001 when the day has no
// records yet. If the scan fails it falls back to a timestamp-derived
// sequence instead of propagating the error. Two concurrent allocations can
// race to the same sequence; the backing store write is the arbiter.
func (g *BusinessIDGenerator) Generate(ctx context.Context) string {
	date := g.clock.Now().UTC().Format("20060102")

	ids, err := g.store.ListBusinessIDsByDate(ctx, date)
	if err != nil {
		g.logger.Warn("business ID scan failed, using timestamp fallback",
			zap.String("date", date),
			zap.Error(err))
		return fmt.Sprintf("%s-%s-%04d", BusinessIDPrefix, date, g.clock.Now().UnixMilli()%10_000)
	}

	prefix := fmt.Sprintf("%s-%s-", BusinessIDPrefix, date)
	maxSeq := 0
	for _, id := range ids {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s%04d", prefix, maxSeq+1)
}

// IdentifierGenerator orchestrates business ID and slug allocation at
// record-creation time.
type IdentifierGenerator struct {
	ids   *BusinessIDGenerator
	slugs *CollisionResolver
	clock shared.Clock
}

// NewIdentifierGenerator creates an IdentifierGenerator backed by store.
func NewIdentifierGenerator(store IdentifierStore, clock shared.Clock, logger *zap.Logger) *IdentifierGenerator {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &IdentifierGenerator{
		ids:   NewBusinessIDGenerator(store, clock, logger),
		slugs: NewCollisionResolver(store, clock, logger),
		clock: clock,
	}
}

// Generate allocates the identifier pair for a new business record. It never
// fails: every degraded path resolves to a timestamp-based identifier.
func (g *IdentifierGenerator) Generate(ctx context.Context, businessName string) BusinessIdentifier {
	businessID := g.ids.Generate(ctx)

	base := Slugify(businessName)
	if len(base) < SlugMinLength {
		base = FallbackSlug(businessID, g.clock)
	}

	return BusinessIdentifier{
		BusinessID: businessID,
		Slug:       g.slugs.Resolve(ctx, base),
	}
}
