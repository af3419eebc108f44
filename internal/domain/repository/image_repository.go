package repository

// ImageRepository define el puerto del caché de imágenes, almacenado aparte
// del snapshot del catálogo y asociado por id de producto. La referencia es
// autocontenida: un data URI (subida local) o una URL remota (generación IA).
type ImageRepository interface {
	// Store guarda la referencia bajo el id del producto, sobrescribiendo la
	// anterior si existe.
	Store(productID, ref string) error

	// Retrieve devuelve la referencia cacheada. found=false si no existe
	// (ausencia no es error).
	Retrieve(productID string) (ref string, found bool, err error)

	// Delete elimina la entrada. Idempotente: borrar una clave ausente no es error.
	Delete(productID string) error
}
