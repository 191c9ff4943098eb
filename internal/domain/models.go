package domain

// Category sections are normalized to exactly "silver" or "stainless"
// on every read; anything unrecognized falls back to "silver".
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Section     string `json:"section"`
}

// Product image paths are web-relative ("uploads/<category>/<file>").
// Offer pricing is active only when OldPrice and OfferPrice are both
// present and greater than zero; otherwise Price governs.
type Product struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Price      float64  `json:"price"`
	Category   string   `json:"category"`
	Images     []string `json:"images"`
	Desc       string   `json:"desc"`
	OldPrice   float64  `json:"oldPrice,omitempty"`
	OfferPrice float64  `json:"offerPrice,omitempty"`
}

func (p Product) OnOffer() bool {
	return p.OldPrice > 0 && p.OfferPrice > 0
}
