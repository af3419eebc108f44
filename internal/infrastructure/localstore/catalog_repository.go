// Package localstore implementa los puertos de persistencia del catálogo
// sobre un almacén clave-valor local (ver internal/infrastructure/kv),
// replicando la distribución del localStorage original: el snapshot completo
// bajo una clave fija y una entrada por imagen cacheada.
package localstore

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/catalogo-local/internal/domain"
	"github.com/jhoicas/catalogo-local/internal/domain/entity"
	"github.com/jhoicas/catalogo-local/internal/domain/repository"
)

// SnapshotKey clave fija del snapshot serializado.
const SnapshotKey = "product_site_data"

//go:embed defaultdata.json
var defaultData []byte

// CatalogRepository adaptador de CatalogRepository sobre kv.Store.
type CatalogRepository struct {
	store Store
}

// Store alias local del puerto clave-valor para no acoplar la firma pública
// al paquete kv.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository construye el adaptador.
func NewCatalogRepository(store Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

// LoadSnapshot lee y deserializa el snapshot. Un JSON corrupto se reporta
// como ErrStorageUnavailable; la degradación a catálogo vacío la decide el
// caso de uso, no este adaptador.
func (r *CatalogRepository) LoadSnapshot() (*entity.Site, bool, error) {
	raw, found, err := r.store.Get(SnapshotKey)
	if err != nil {
		return nil, false, fmt.Errorf("leer snapshot: %w: %v", domain.ErrStorageUnavailable, err)
	}
	if !found {
		return nil, false, nil
	}
	var site entity.Site
	if err := json.Unmarshal(raw, &site); err != nil {
		return nil, false, fmt.Errorf("snapshot corrupto: %w: %v", domain.ErrStorageUnavailable, err)
	}
	if site.Categories == nil {
		site.Categories = []entity.Category{}
	}
	return &site, true, nil
}

// SaveSnapshot serializa y reescribe el snapshot completo.
func (r *CatalogRepository) SaveSnapshot(site *entity.Site) error {
	raw, err := json.Marshal(site)
	if err != nil {
		return fmt.Errorf("serializar snapshot: %w: %v", domain.ErrStorageUnavailable, err)
	}
	if err := r.store.Set(SnapshotKey, raw); err != nil {
		return fmt.Errorf("guardar snapshot: %w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// LoadDefault deserializa el dataset embebido. No toca el almacén.
func (r *CatalogRepository) LoadDefault() (*entity.Site, error) {
	var payload struct {
		Site entity.Site `json:"site"`
	}
	if err := json.Unmarshal(defaultData, &payload); err != nil {
		return nil, fmt.Errorf("dataset por defecto: %w: %v", domain.ErrStorageUnavailable, err)
	}
	if payload.Site.Categories == nil {
		payload.Site.Categories = []entity.Category{}
	}
	return &payload.Site, nil
}
