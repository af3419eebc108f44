package localstore

import (
	"fmt"

	"github.com/jhoicas/catalogo-local/internal/domain"
	"github.com/jhoicas/catalogo-local/internal/domain/repository"
)

// imageKeyPrefix esquema de claves del caché: product_image_<id>.
const imageKeyPrefix = "product_image_"

// ImageRepository adaptador de ImageRepository sobre kv.Store. Guarda la
// referencia tal cual (data URI o URL remota) bajo la clave derivada del id.
type ImageRepository struct {
	store Store
}

var _ repository.ImageRepository = (*ImageRepository)(nil)

// NewImageRepository construye el adaptador.
func NewImageRepository(store Store) *ImageRepository {
	return &ImageRepository{store: store}
}

// ImageKey devuelve la clave de almacenamiento para un id de producto.
func ImageKey(productID string) string {
	return imageKeyPrefix + productID
}

func (r *ImageRepository) Store(productID, ref string) error {
	if err := r.store.Set(ImageKey(productID), []byte(ref)); err != nil {
		return fmt.Errorf("guardar imagen %s: %w: %v", productID, domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *ImageRepository) Retrieve(productID string) (string, bool, error) {
	raw, found, err := r.store.Get(ImageKey(productID))
	if err != nil {
		return "", false, fmt.Errorf("leer imagen %s: %w: %v", productID, domain.ErrStorageUnavailable, err)
	}
	if !found {
		return "", false, nil
	}
	return string(raw), true, nil
}

func (r *ImageRepository) Delete(productID string) error {
	if err := r.store.Delete(ImageKey(productID)); err != nil {
		return fmt.Errorf("eliminar imagen %s: %w: %v", productID, domain.ErrStorageUnavailable, err)
	}
	return nil
}
