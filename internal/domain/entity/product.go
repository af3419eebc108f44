package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa una entrada del catálogo. La variante legada "Recipe"
// quedó unificada en este tipo: ambas diferían solo en nombres de campos.
// Los tags JSON conservan el formato de intercambio del snapshot
// (_id, itemPage, etc.), que es también el formato persistido.
type Product struct {
	ID           string           `json:"_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"` // nil = sin precio publicado; nunca negativo
	ImageURL     string           `json:"imageUrl,omitempty"`
	CreatedAt    time.Time        `json:"createdAt,omitempty"` // asignado al crear; inmutable
	CategoryID   string           `json:"categoryId,omitempty"`
	CategoryName string           `json:"category,omitempty"` // copia desnormalizada para visualización
}
