package models

// Product is an item offered by a farmer.
type Product struct {
	ID          int64  `json:"id"`
	FarmerID    int64  `json:"farmer_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
}
