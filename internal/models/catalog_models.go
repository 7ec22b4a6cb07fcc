package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money leaves the API as JSON numbers, matching what the POS terminals parse.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category types accepted by the catalog.
const (
	CategoryTypeFood    = "food"
	CategoryTypeDrink   = "drink"
	CategoryTypeDessert = "dessert"
	CategoryTypeOther   = "other"
)

// Product and order line types. Anything that is not a drink is billed as food.
const (
	ItemTypeFood  = "food"
	ItemTypeDrink = "drink"
)

// IsValidCategoryType checks if the provided string is a known category type.
func IsValidCategoryType(t string) bool {
	switch t {
	case CategoryTypeFood, CategoryTypeDrink, CategoryTypeDessert, CategoryTypeOther:
		return true
	default:
		return false
	}
}

// Category groups products on the menu.
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Type        string    `json:"type" db:"type"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Products    []Product `json:"products,omitempty"`
}

// Product is a sellable menu entry.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Type          string          `json:"type" db:"type"`
	CategoryID    int64           `json:"category_id" db:"category_id"`
	PreparingTime int             `json:"preparing_time" db:"preparing_time"` // minutes
	IsActive      bool            `json:"is_active" db:"is_active"`
	ImageURL      *string         `json:"image_url,omitempty" db:"image_url"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	CategoryName   string                 `json:"category_name,omitempty"`
	Supplements    []ProductSupplement    `json:"supplements,omitempty"`
	Accompaniments []ProductAccompaniment `json:"accompaniments,omitempty"`
}

// ProductFilters narrows product listings.
type ProductFilters struct {
	CategoryID *int64
	Type       *string
	ActiveOnly bool
	Search     string
}

// Supplement is a paid add-on that can be attached to order lines.
type Supplement struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Accompaniment is a side served with a product; MaxFree units are included in the price.
type Accompaniment struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	MaxFree   int             `json:"max_free" db:"max_free"`
	Price     decimal.Decimal `json:"price" db:"price"`
	IsActive  bool            `json:"is_active" db:"is_active"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductSupplement is the product_supplement pivot with its pricing override.
type ProductSupplement struct {
	SupplementID int64           `json:"supplement_id" db:"supplement_id"`
	Name         string          `json:"name,omitempty"`
	Quantity     int             `json:"quantity" db:"quantity"`
	ExtraPrice   decimal.Decimal `json:"extra_price" db:"extra_price"`
}

// ProductAccompaniment is the accompaniment_product pivot.
type ProductAccompaniment struct {
	AccompanimentID int64           `json:"accompaniment_id" db:"accompaniment_id"`
	Name            string          `json:"name,omitempty"`
	MaxFree         int             `json:"max_free"`
	Price           decimal.Decimal `json:"price"`
	IsDefault       bool            `json:"is_default" db:"is_default"`
}
