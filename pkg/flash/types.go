package flash

// tokenResponse is the OAuth client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Product is one entry of the Flash catalog payload, in Flash's native field
// names. Amounts are integer cents.
type Product struct {
	ProductCode    string  `json:"productCode"`
	ProductName    string  `json:"productName"`
	Vendor         string  `json:"vendor"`
	VendorCategory string  `json:"vendorCategory"`
	Category       string  `json:"category"`
	AmountType     string  `json:"amountType"` // "FIXED" or "RANGE"
	MinimumAmount  int64   `json:"minimumAmount"`
	MaximumAmount  int64   `json:"maximumAmount"`
	Denominations  []int64 `json:"denominations,omitempty"`
	CommissionRate float64 `json:"commissionRate"`
	Promotional    bool    `json:"promotional"`
	PromoDiscount  float64 `json:"promoDiscount,omitempty"`
}

// catalogResponse wraps the product list.
type catalogResponse struct {
	Status   string    `json:"status"`
	Message  string    `json:"message,omitempty"`
	Products []Product `json:"products"`
}

// healthResponse is the ping payload.
type healthResponse struct {
	Status string `json:"status"`
}
