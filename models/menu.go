package models

import "github.com/shopspring/decimal"

// MenuItem is a catalog entry. The order core treats the catalog as
// read-only within a request; price changes never touch existing orders.
type MenuItem struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Category    string          `json:"category" db:"category"`
	Price       decimal.Decimal `json:"price" db:"price"`
	SortOrder   int             `json:"sort_order" db:"sort_order"`
	ImagePath   string          `json:"image_path" db:"image_path"`
}

// CategoryCount is one row of the catalog's category distribution.
type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int    `json:"count" db:"count"`
}
