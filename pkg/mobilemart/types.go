package mobilemart

// Item is one entry of the MobileMart catalogue payload, in MobileMart's
// native field names. Amounts are integer cents; Amount is set for fixed
// products, MinAmount/MaxAmount for open-amount products.
type Item struct {
	MerchantProductID string  `json:"merchantProductId"`
	VariantID         string  `json:"variantId"`
	Name              string  `json:"name"`
	ContentCreator    string  `json:"contentCreator"`
	CreatorCategory   string  `json:"creatorCategory"`
	VasType           string  `json:"vasType"`
	AmountType        string  `json:"amountType"` // "fixed" or "open"
	Amount            int64   `json:"amount,omitempty"`
	MinAmount         int64   `json:"minAmount,omitempty"`
	MaxAmount         int64   `json:"maxAmount,omitempty"`
	Commission        float64 `json:"commission"`
	OnPromotion       bool    `json:"onPromotion"`
	PromotionDiscount float64 `json:"promotionDiscount,omitempty"`
}

// catalogueResponse wraps the item list.
type catalogueResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Items   []Item `json:"items"`
}

// pingResponse is the health check payload.
type pingResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
