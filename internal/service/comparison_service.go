package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/walletgate/vas-catalog/internal/models"
)

// comparisonSource loads active variants with supplier and brand context
// joined. An empty vasType means all categories.
type comparisonSource interface {
	GetActiveByVasType(ctx context.Context, vasType models.VasType) ([]models.ProductVariant, error)
}

// Deal is one logical product with its cross-supplier winner and the
// alternatives it beat, ranked.
type Deal struct {
	Key          string                  `json:"key"`
	DisplayName  string                  `json:"displayName"`
	Winner       models.ProductVariant   `json:"winner"`
	Alternatives []models.ProductVariant `json:"alternatives,omitempty"`
}

// Recommendation is a human-readable hint derived from the comparison, never
// a control-flow decision.
type Recommendation struct {
	Kind     string              `json:"kind"`
	Supplier models.SupplierCode `json:"supplier"`
	Detail   string              `json:"detail"`
}

// ComparisonService answers ad-hoc "what is the best deal" questions across
// suppliers, outside the pre-materialized table. It collapses logically
// identical products advertised under slightly different names and picks a
// winner with a deterministic tie-break chain.
type ComparisonService struct {
	source  comparisonSource
	ranking map[models.SupplierCode]int
}

// NewComparisonService constructs a ComparisonService. The ranking map comes
// from configuration; lower values win ties.
func NewComparisonService(source comparisonSource, ranking map[models.SupplierCode]int) *ComparisonService {
	return &ComparisonService{source: source, ranking: ranking}
}

// BestDeals groups active variants into logical products and returns the
// winning deal per group, ordered by group key.
func (s *ComparisonService) BestDeals(ctx context.Context, vasType models.VasType) ([]Deal, error) {
	variants, err := s.source.GetActiveByVasType(ctx, vasType)
	if err != nil {
		return nil, fmt.Errorf("load variants for comparison: %w", err)
	}
	return s.groupAndRank(variants), nil
}

// groupAndRank is the pure core of the comparison: group, sort by the
// tie-break chain, pick the first entry per group.
func (s *ComparisonService) groupAndRank(variants []models.ProductVariant) []Deal {
	groups := make(map[string][]models.ProductVariant)
	for _, v := range variants {
		groups[logicalKey(v)] = append(groups[logicalKey(v)], v)
	}

	deals := make([]Deal, 0, len(groups))
	for key, members := range groups {
		s.sortByTieBreak(members)
		deal := Deal{
			Key:         key,
			DisplayName: members[0].ProductName,
			Winner:      members[0],
		}
		if len(members) > 1 {
			deal.Alternatives = members[1:]
		}
		deals = append(deals, deal)
	}

	sort.Slice(deals, func(i, j int) bool { return deals[i].Key < deals[j].Key })
	return deals
}

// sortByTieBreak orders group members by (1) commission descending,
// (2) minimum user-facing price ascending, (3) the configured supplier
// ranking.
func (s *ComparisonService) sortByTieBreak(members []models.ProductVariant) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.Commission != b.Commission {
			return a.Commission > b.Commission
		}
		if a.MinAmount != b.MinAmount {
			return a.MinAmount < b.MinAmount
		}
		return s.supplierRank(a) < s.supplierRank(b)
	})
}

// supplierRank resolves the configured ranking, falling back to the
// supplier's seeded priority for codes missing from config.
func (s *ComparisonService) supplierRank(v models.ProductVariant) int {
	if rank, ok := s.ranking[v.SupplierCode]; ok {
		return rank
	}
	return 100 + v.SupplierPriority
}

// Promotions returns all promotional variants ranked by discount size.
func (s *ComparisonService) Promotions(ctx context.Context) ([]models.ProductVariant, error) {
	variants, err := s.source.GetActiveByVasType(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load variants for promotions: %w", err)
	}

	promos := variants[:0:0]
	for _, v := range variants {
		if v.IsPromotional {
			promos = append(promos, v)
		}
	}
	sort.SliceStable(promos, func(i, j int) bool {
		return promos[i].PromoDiscount > promos[j].PromoDiscount
	})
	return promos, nil
}

// Recommendations derives simple cross-supplier hints: best value, best
// promotion, widest selection.
func (s *ComparisonService) Recommendations(ctx context.Context) ([]Recommendation, error) {
	variants, err := s.source.GetActiveByVasType(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load variants for recommendations: %w", err)
	}
	if len(variants) == 0 {
		return nil, nil
	}

	var recs []Recommendation

	best := variants[0]
	for _, v := range variants[1:] {
		if v.Commission > best.Commission {
			best = v
		}
	}
	recs = append(recs, Recommendation{
		Kind:     "best_value",
		Supplier: best.SupplierCode,
		Detail:   fmt.Sprintf("%s at %.2f%% commission", best.ProductName, best.Commission),
	})

	var topPromo *models.ProductVariant
	for i := range variants {
		v := &variants[i]
		if v.IsPromotional && (topPromo == nil || v.PromoDiscount > topPromo.PromoDiscount) {
			topPromo = v
		}
	}
	if topPromo != nil {
		recs = append(recs, Recommendation{
			Kind:     "best_promotion",
			Supplier: topPromo.SupplierCode,
			Detail:   fmt.Sprintf("%s at %.2f%% off", topPromo.ProductName, topPromo.PromoDiscount),
		})
	}

	counts := make(map[models.SupplierCode]int)
	for _, v := range variants {
		counts[v.SupplierCode]++
	}
	widest := best.SupplierCode
	for code, n := range counts {
		if n > counts[widest] || (n == counts[widest] && code < widest) {
			widest = code
		}
	}
	recs = append(recs, Recommendation{
		Kind:     "widest_selection",
		Supplier: widest,
		Detail:   fmt.Sprintf("%d active variants", counts[widest]),
	})

	return recs, nil
}

// voucherSuffix matches trailing tokens that distinguish otherwise identical
// voucher listings across suppliers: denominations ("R50", "100"), and words
// like "voucher", "gift card", "pin".
var voucherSuffix = regexp.MustCompile(`^(r?\d+([.,]\d+)?|voucher|vouchers|gift|card|giftcard|e-voucher|evoucher|pin|code|digital)$`)

// logicalKey collapses logically identical products into one group key.
// Voucher-like products group by normalized name so "Acme R50" and
// "Acme Gift Card" meet in one group; everything else keeps the upstream
// product identifier.
func logicalKey(v models.ProductVariant) string {
	if v.VasType == models.VasTypeVoucher {
		return "name:" + normalizeVoucherName(v.ProductName)
	}
	return fmt.Sprintf("id:%s:%s", v.VasType, strings.ToLower(v.SupplierVariantID))
}

// normalizeVoucherName lowercases the product name and strips trailing
// denomination/voucher/gift-card suffixes, repeatedly, so suffix stacks like
// "Gift Card R50" fall away too. Falls back to the plain lowercased name
// when stripping would consume everything.
func normalizeVoucherName(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	for len(fields) > 1 && voucherSuffix.MatchString(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return strings.ToLower(strings.TrimSpace(name))
	}
	return strings.Join(fields, " ")
}
