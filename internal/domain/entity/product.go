package entity

// Product is one catalog record as served by the product store.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`

	// Search metadata, only populated on search results.
	Score     float64             `json:"_score,omitempty"`
	Highlight map[string][]string `json:"_highlight,omitempty"`
}

// SearchResult is a ranked product list with the total hit count.
type SearchResult struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Query    string    `json:"query,omitempty"`
	Type     string    `json:"search_type,omitempty"`
}

// CartItem is one add-to-cart request line.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartLine is one priced line of a cart.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// Cart is the priced cart for one user, including loyalty adjustments.
type Cart struct {
	Items        []CartLine `json:"items"`
	Subtotal     float64    `json:"subtotal"`
	Discount     float64    `json:"discount"`
	Total        float64    `json:"total"`
	LoyaltyPerks []string   `json:"loyalty_perks"`
}
