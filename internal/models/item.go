package models

// Item represents an inventory item owned by exactly one user. The owner
// reference is set at creation and never changes.
type Item struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	OwnerID     int64   `json:"owner_id"`
}

// ItemCreate is the payload for creating an item. Price is a pointer so a
// missing field can be told apart from a legitimate zero price.
type ItemCreate struct {
	Title       string   `json:"title" validate:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Quantity    int      `json:"quantity" validate:"gte=0"`
}

// ItemUpdate carries the fields of a partial item update. A nil field means
// "leave unchanged".
type ItemUpdate struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
}
