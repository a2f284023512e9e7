package domain

// Image is a remote image already persisted by the backend's image hosting.
// The backend returns images as objects carrying the hosted URL.
type Image struct {
	URL string `json:"url"`
}

// Category represents a product category as served by the Kilo Fresh backend.
// The json tags correspond to the field names in the backend's API responses.
type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image Image  `json:"image"`
}

// Product represents a product in the catalog. Prices are the pre- and
// post-discount pair; PriceAfter must stay strictly below PriceBefore, which
// the console enforces before any request is made.
type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceBefore float64 `json:"priceBefore"`
	PriceAfter  float64 `json:"priceAfter"`
	// Category holds the id of the owning category. Display code resolves it
	// against the loaded category list and falls back to an "unspecified"
	// label when the reference no longer exists.
	Category string  `json:"category"`
	IsOffer  bool    `json:"isOffer"`
	Images   []Image `json:"images"`
}
