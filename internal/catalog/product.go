package catalog

import (
	"github.com/google/uuid"

	"github.com/aragel-soft/chulada-pos-sub001/internal/pricing"
)

// Product is the catalog entry the register scans against. Prices are minor
// units; Stock is the availability snapshot used as a clamp ceiling by the
// register engine and is not re-validated there.
type Product struct {
	ID             uuid.UUID     `json:"id"`
	Code           string        `json:"code"`
	Barcode        string        `json:"barcode"`
	Name           string        `json:"name"`
	RetailPrice    pricing.Money `json:"retailPrice"`
	WholesalePrice pricing.Money `json:"wholesalePrice"`
	Stock          int           `json:"stock"`
	MinStock       int           `json:"minStock"`
	Category       string        `json:"category"`
	ImageURL       string        `json:"imageUrl"`
}
