package repository

import "github.com/jhoicas/catalogo-local/internal/domain/entity"

// CatalogRepository define el puerto de persistencia del snapshot (DIP).
// El snapshot es la única unidad de lectura/escritura: no hay persistencia
// incremental.
type CatalogRepository interface {
	// LoadSnapshot devuelve el snapshot persistido. found=false si nunca se
	// guardó uno. Un snapshot corrupto devuelve error (ErrStorageUnavailable).
	LoadSnapshot() (site *entity.Site, found bool, err error)

	// SaveSnapshot reescribe el snapshot completo.
	SaveSnapshot(site *entity.Site) error

	// LoadDefault devuelve el dataset por defecto embebido, sin persistirlo.
	LoadDefault() (*entity.Site, error)
}
