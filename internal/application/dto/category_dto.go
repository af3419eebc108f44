package dto

// TranslationDTO nombre traducido de una categoría (Lang en formato BCP-47).
type TranslationDTO struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// UpdateCategoryRequest entrada para actualizar una categoría.
// Merge superficial: Name presente reemplaza; Translations no-nil reemplaza
// la lista completa (nil la conserva).
type UpdateCategoryRequest struct {
	Name         *string          `json:"category,omitempty"`
	Translations []TranslationDTO `json:"translatedCategory,omitempty"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID           string            `json:"_id"`
	Name         string            `json:"category"`
	Translations []TranslationDTO  `json:"translatedCategory,omitempty"`
	Priority     int               `json:"priority,omitempty"`
	Products     []ProductResponse `json:"itemPage"`
}

// SiteResponse snapshot completo del catálogo tal como lo consume la vista.
type SiteResponse struct {
	Logo       string             `json:"logo,omitempty"`
	Categories []CategoryResponse `json:"categories"`
}
