package entity

// Site es la raíz del agregado: cabecera más la lista ordenada de categorías.
// Es la unidad de serialización completa hacia el almacenamiento local; cada
// mutación lee el snapshot entero, lo modifica y lo reescribe (sin escrituras
// parciales).
type Site struct {
	Header     Header     `json:"header"`
	Categories []Category `json:"categories"`
}

// Header metadatos de presentación del sitio.
type Header struct {
	Logo string `json:"logo,omitempty"`
}

// FindCategory devuelve el índice de la categoría con ese id, o -1.
func (s *Site) FindCategory(id string) int {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

// FindProduct localiza un producto por id recorriendo todas las categorías
// (escaneo lineal; se asume id único en todo el catálogo). Devuelve los
// índices de categoría y producto, o (-1, -1) si no existe.
func (s *Site) FindProduct(id string) (catIdx, prodIdx int) {
	for i := range s.Categories {
		for j := range s.Categories[i].Products {
			if s.Categories[i].Products[j].ID == id {
				return i, j
			}
		}
	}
	return -1, -1
}
