package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/walletgate/vas-catalog/internal/models"
)

// bestOfferSource loads the candidate variants, pre-sorted by commission
// descending.
type bestOfferSource interface {
	GetMaterializable(ctx context.Context) ([]models.ProductVariant, error)
}

// bestOfferSink atomically publishes a rebuilt offer table plus its audit
// row; on error the previously published rows must remain intact.
type bestOfferSink interface {
	Rebuild(ctx context.Context, offers []models.BestOffer, audit *models.CatalogRefreshAudit) error
}

// offerCache invalidates cached best-offer reads after a successful rebuild.
type offerCache interface {
	Invalidate(ctx context.Context) error
}

// BestOfferService rebuilds the fully denormalized best-deal index: one row
// per (vasType, provider, denomination) pointing at the highest-commission
// active variant.
type BestOfferService struct {
	source bestOfferSource
	sink   bestOfferSink
	cache  offerCache
}

// NewBestOfferService constructs a BestOfferService. The cache may be nil.
func NewBestOfferService(source bestOfferSource, sink bestOfferSink, cache offerCache) *BestOfferService {
	return &BestOfferService{source: source, sink: sink, cache: cache}
}

// Rebuild computes the winners and swaps them in atomically, tagging every
// row with a fresh catalog version. Readers see either the old complete
// table or the new complete table.
func (s *BestOfferService) Rebuild(ctx context.Context, trigger string) (*models.CatalogRefreshAudit, error) {
	start := time.Now()

	variants, err := s.source.GetMaterializable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load materializable variants: %w", err)
	}

	version := time.Now().UTC()
	offers := selectWinners(variants, version)

	audit := &models.CatalogRefreshAudit{
		RunID:          uuid.New().String(),
		TriggeredBy:    trigger,
		RowsAffected:   int64(len(offers)),
		CatalogVersion: version,
	}

	audit.DurationMs = time.Since(start).Milliseconds()
	if err := s.sink.Rebuild(ctx, offers, audit); err != nil {
		return nil, fmt.Errorf("publish best offers: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate best-offer cache")
		}
	}

	log.Info().
		Str("run_id", audit.RunID).
		Int("offers", len(offers)).
		Int("candidates", len(variants)).
		Dur("duration", time.Since(start)).
		Msg("Best-offer table rebuilt")
	return audit, nil
}

// offerKey is the uniqueness key of the materialized table.
type offerKey struct {
	vasType  models.VasType
	provider string
	denom    int64
}

// selectWinners enumerates the denomination set of every fixed variant and
// keeps the first variant seen per key. The input is sorted by commission
// descending, so first seen is the strictly highest commission and ties go
// to the earlier row. Variable variants contribute nothing: they have no
// fixed denomination key.
func selectWinners(variants []models.ProductVariant, version time.Time) []models.BestOffer {
	seen := make(map[offerKey]bool)
	offers := make([]models.BestOffer, 0, len(variants))

	for _, v := range variants {
		for _, denom := range v.DenominationSet() {
			key := offerKey{vasType: v.VasType, provider: v.Provider, denom: denom}
			if seen[key] {
				continue
			}
			seen[key] = true
			offers = append(offers, models.BestOffer{
				VasType:           v.VasType,
				Provider:          v.Provider,
				DenominationCents: denom,
				VariantID:         v.ID,
				SupplierID:        v.SupplierID,
				Commission:        v.Commission,
				CatalogVersion:    version,
			})
		}
	}
	return offers
}
