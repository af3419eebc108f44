package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// ID es opcional: si el caller subió una imagen antes de guardar, trae el id
// temporal (temp_<ts>) para que el caso de uso migre la imagen cacheada al id
// definitivo. Si viene vacío o temporal, el store asigna uno nuevo.
type CreateProductRequest struct {
	ID          string           `json:"_id,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    string           `json:"imageUrl,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto.
// Campos puntero: presente reemplaza, ausente conserva el valor guardado
// (merge superficial). Identidad y CreatedAt son inmutables y no aparecen.
type UpdateProductRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty"`
}

// ProductResponse salida de un producto materializado.
type ProductResponse struct {
	ID           string           `json:"_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	ImageURL     string           `json:"imageUrl,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	CategoryID   string           `json:"categoryId,omitempty"`
	CategoryName string           `json:"category,omitempty"`
}

// ProductListResponse lista paginada de productos de una categoría.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
