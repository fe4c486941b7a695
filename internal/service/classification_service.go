package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/walletgate/vas-catalog/internal/models"
	"github.com/walletgate/vas-catalog/internal/repository"
)

// ClassificationService runs the variable-first filter across the groups a
// sweep touched and persists the outcome. Classification itself never fails;
// database errors are logged, counted, and do not stop the remaining groups.
type ClassificationService struct {
	variants   *repository.VariantRepository
	products   *repository.ProductRepository
	classifier *Classifier
}

// NewClassificationService constructs a ClassificationService.
func NewClassificationService(variants *repository.VariantRepository, products *repository.ProductRepository, classifier *Classifier) *ClassificationService {
	return &ClassificationService{
		variants:   variants,
		products:   products,
		classifier: classifier,
	}
}

// ClassifyGroups evaluates each touched (brand, vasType) group, persists
// verdicts and suppression, and finally deactivates products left without
// active variants. Returns how many variants were suppressed and how many
// groups hit a database error.
func (s *ClassificationService) ClassifyGroups(ctx context.Context, groups []GroupKey) (int, int) {
	suppressed := 0
	errs := 0

	for _, key := range groups {
		variants, err := s.variants.GetGroup(ctx, key.BrandID, key.VasType)
		if err != nil {
			errs++
			log.Error().Err(err).Int("brand_id", key.BrandID).Str("vas_type", string(key.VasType)).
				Msg("Failed to load classification group")
			continue
		}
		if len(variants) == 0 {
			continue
		}

		out := s.classifier.EvaluateGroup(key.VasType, variants)

		if err := s.persistOutcome(ctx, variants, out); err != nil {
			errs++
			log.Error().Err(err).Int("brand_id", key.BrandID).Str("vas_type", string(key.VasType)).
				Msg("Failed to persist classification outcome")
			continue
		}
		suppressed += len(out.Deactivate)

		if len(out.Deactivate) > 0 {
			log.Info().
				Int("brand_id", key.BrandID).
				Str("vas_type", string(key.VasType)).
				Int("suppressed", len(out.Deactivate)).
				Msg("Suppressed redundant fixed variants")
		}
	}

	if n, err := s.products.DeactivateWithoutActiveVariants(ctx); err != nil {
		errs++
		log.Error().Err(err).Msg("Failed to deactivate empty products")
	} else if n > 0 {
		log.Info().Int64("products", n).Msg("Deactivated products without active variants")
	}

	return suppressed, errs
}

// persistOutcome writes changed verdicts and the suppression status flips.
func (s *ClassificationService) persistOutcome(ctx context.Context, variants []models.ProductVariant, out GroupOutcome) error {
	for _, v := range variants {
		verdict := out.Verdicts[v.ID]
		if verdict == "" || verdict == v.PriceType {
			continue
		}
		if err := s.variants.SetPriceType(ctx, v.ID, verdict); err != nil {
			return err
		}
	}

	if err := s.variants.SetStatus(ctx, out.Deactivate, models.StatusInactive); err != nil {
		return err
	}
	return s.variants.SetStatus(ctx, out.Activate, models.StatusActive)
}
