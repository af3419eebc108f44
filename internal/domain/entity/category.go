package entity

// Category agrupa productos bajo un nombre, con traducciones opcionales.
// Products conserva el orden de inserción salvo reordenamiento explícito.
type Category struct {
	ID           string        `json:"_id"`
	Name         string        `json:"category"`
	Translations []Translation `json:"translatedCategory,omitempty"`
	Priority     int           `json:"priority,omitempty"` // posición 1-based tras un reorder; 0 = sin asignar
	Products     []Product     `json:"itemPage"`
}

// Translation nombre de la categoría en un idioma concreto.
// Lang es una etiqueta BCP-47 (es, en-US, ...).
type Translation struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}
