package service

import (
	"strings"

	"github.com/walletgate/vas-catalog/internal/models"
)

// classifierRule is one named step of the variable-first filter. Rules are
// evaluated top to bottom; the first rule that applies decides the verdict.
type classifierRule struct {
	name  string
	apply func(v models.ProductVariant) (models.PriceType, bool)
}

// variableKeywords mark product names that describe an open, user-entered
// amount.
var variableKeywords = []string{
	"variable",
	"custom",
	"open amount",
	"own amount",
	"any amount",
	"flexible",
}

// subscriptionKeywords identify brands whose fixed tiers are all legitimate
// and distinct (streaming and subscription services), exempting the whole
// group from suppression.
var subscriptionKeywords = []string{
	"netflix",
	"showmax",
	"dstv",
	"spotify",
	"deezer",
	"apple music",
	"youtube premium",
	"amazon prime",
	"disney",
}

// suppressionExemptVasTypes are categories whose amounts are inherently
// user-entered; every listed variant must stay visible.
var suppressionExemptVasTypes = map[models.VasType]bool{
	models.VasTypeElectricity: true,
	models.VasTypeBillPayment: true,
}

// Classifier decides, per variant, whether it represents an open/variable
// amount or a fixed denomination, and which fixed variants of a group are
// redundant duplicates. Classification never fails; an unrecognized shape
// defaults to fixed, because suppressing a legitimate fixed product is worse
// than showing a harmless duplicate.
type Classifier struct {
	rules []classifierRule
}

// NewClassifier builds the rule chain in its fixed evaluation order.
func NewClassifier() *Classifier {
	return &Classifier{rules: []classifierRule{
		{
			// An operator override is authoritative and never re-derived.
			name: "operator-override",
			apply: func(v models.ProductVariant) (models.PriceType, bool) {
				if v.PriceTypeOverride != nil {
					return *v.PriceTypeOverride, true
				}
				return "", false
			},
		},
		{
			// A variant tagged variable by a prior run stays variable.
			name: "sticky-variable",
			apply: func(v models.ProductVariant) (models.PriceType, bool) {
				if v.PriceType == models.PriceTypeVariable {
					return models.PriceTypeVariable, true
				}
				return "", false
			},
		},
		{
			// Two or more discrete denominations form a picker list, not
			// an open amount.
			name: "picker-list",
			apply: func(v models.ProductVariant) (models.PriceType, bool) {
				if len(v.Denominations) >= 2 {
					return models.PriceTypeFixed, true
				}
				return "", false
			},
		},
		{
			// A degenerate range is a single price point.
			name: "degenerate-range",
			apply: func(v models.ProductVariant) (models.PriceType, bool) {
				if v.MinAmount == v.MaxAmount {
					return models.PriceTypeFixed, true
				}
				return "", false
			},
		},
		{
			// The supplier explicitly marked this as a range type.
			name: "explicit-range-metadata",
			apply: func(v models.ProductVariant) (models.PriceType, bool) {
				if v.PriceTypeHint != nil && *v.PriceTypeHint == models.PriceTypeVariable {
					return models.PriceTypeVariable, true
				}
				return "", false
			},
		},
		{
			name: "variable-keyword-name",
			apply: func(v models.ProductVariant) (models.PriceType, bool) {
				name := strings.ToLower(v.ProductName)
				for _, kw := range variableKeywords {
					if strings.Contains(name, kw) {
						return models.PriceTypeVariable, true
					}
				}
				return "", false
			},
		},
		{
			// A genuine span means the user picks the amount.
			name: "genuine-span",
			apply: func(v models.ProductVariant) (models.PriceType, bool) {
				if v.MinAmount < v.MaxAmount {
					return models.PriceTypeVariable, true
				}
				return "", false
			},
		},
	}}
}

// Classify returns the verdict for one variant. Deterministic for any fixed
// input shape; defaults to fixed.
func (c *Classifier) Classify(v models.ProductVariant) models.PriceType {
	for _, rule := range c.rules {
		if verdict, ok := rule.apply(v); ok {
			return verdict
		}
	}
	return models.PriceTypeFixed
}

// GroupKey identifies one (brand, vasType) classification group.
type GroupKey struct {
	BrandID int
	VasType models.VasType
}

// GroupOutcome is the result of evaluating one group: the verdict per variant
// plus the status changes suppression demands.
type GroupOutcome struct {
	Verdicts   map[int]models.PriceType
	Deactivate []int
	Activate   []int
	Exempt     bool
}

// EvaluateGroup classifies every variant of one (brand, vasType) group and
// applies the group-level suppression policy. Electricity and bill payment
// groups are always exempt, as are subscription-tier brands. For all other
// groups: when at least one variant classifies variable, the variable
// variants stay active and every fixed variant is deactivated (reversible);
// when none does, statuses are left untouched.
func (c *Classifier) EvaluateGroup(vasType models.VasType, variants []models.ProductVariant) GroupOutcome {
	out := GroupOutcome{Verdicts: make(map[int]models.PriceType, len(variants))}

	hasVariable := false
	for _, v := range variants {
		verdict := c.Classify(v)
		out.Verdicts[v.ID] = verdict
		if verdict == models.PriceTypeVariable {
			hasVariable = true
		}
	}

	if suppressionExemptVasTypes[vasType] || c.groupIsSubscription(variants) {
		out.Exempt = true
		return out
	}

	if !hasVariable {
		return out
	}

	for _, v := range variants {
		switch out.Verdicts[v.ID] {
		case models.PriceTypeVariable:
			if v.Status != models.StatusActive {
				out.Activate = append(out.Activate, v.ID)
			}
		case models.PriceTypeFixed:
			if v.Status == models.StatusActive {
				out.Deactivate = append(out.Deactivate, v.ID)
			}
		}
	}
	return out
}

// groupIsSubscription reports whether the group's brand matches a known
// subscription-tier keyword.
func (c *Classifier) groupIsSubscription(variants []models.ProductVariant) bool {
	for _, v := range variants {
		brand := strings.ToLower(v.BrandName + " " + v.BrandCategory)
		for _, kw := range subscriptionKeywords {
			if strings.Contains(brand, kw) {
				return true
			}
		}
	}
	return false
}
