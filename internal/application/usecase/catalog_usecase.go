package usecase

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/jhoicas/catalogo-local/internal/application/dto"
	"github.com/jhoicas/catalogo-local/internal/domain"
	"github.com/jhoicas/catalogo-local/internal/domain/entity"
	"github.com/jhoicas/catalogo-local/internal/domain/repository"
	"github.com/jhoicas/catalogo-local/pkg/logger"
)

// DeletePolicy decide qué pasa con los productos de una categoría eliminada.
type DeletePolicy string

const (
	// DeleteCascade elimina los productos hijos y sus imágenes cacheadas.
	DeleteCascade DeletePolicy = "cascade"
	// DeleteUnfile mueve los productos hijos a la categoría de archivo,
	// conservando sus imágenes.
	DeleteUnfile DeletePolicy = "unfile"
)

// UnfiledCategoryName nombre de la categoría que recibe productos huérfanos
// bajo la política unfile.
const UnfiledCategoryName = "Sin categoría"

// CatalogUseCase es la única fuente de verdad del catálogo: media todas las
// lecturas y escrituras del snapshot y reconcilia el caché de imágenes en
// cada carga. Disciplina de mutación: leer snapshot completo, mutar en
// memoria, reescribir completo.
//
// Modelo de un solo escritor (una sesión activa); el mutex protege el ciclo
// leer-modificar-reescribir para consumidores concurrentes de la librería
// sin cambiar la semántica.
type CatalogUseCase struct {
	mu      sync.Mutex
	catalog repository.CatalogRepository
	images  repository.ImageRepository
	policy  DeletePolicy
	log     *logger.Logger
}

// NewCatalogUseCase construye el caso de uso. policy vacío equivale a cascade.
func NewCatalogUseCase(catalog repository.CatalogRepository, images repository.ImageRepository, policy DeletePolicy, log *logger.Logger) *CatalogUseCase {
	if policy == "" {
		policy = DeleteCascade
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogUseCase{catalog: catalog, images: images, policy: policy, log: log}
}

// Load devuelve el snapshot persistido o, si no existe (o forceDefault es
// true), siembra el dataset por defecto y lo persiste. Tras cargar, el caché
// de imágenes tiene autoridad sobre el imageUrl guardado de cada producto.
//
// Un snapshot corrupto degrada a catálogo vacío: se devuelve {categories: []}
// junto con el error tipado (ErrStorageUnavailable) para que el caller pueda
// inspeccionar la condición; no es una falla dura.
func (uc *CatalogUseCase) Load(forceDefault bool) (*dto.SiteResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !forceDefault {
		site, found, err := uc.catalog.LoadSnapshot()
		if err != nil {
			uc.log.Error().Err(err).Msg("cargar snapshot; degradando a catálogo vacío")
			return toSiteResponse(&entity.Site{Categories: []entity.Category{}}), err
		}
		if found {
			uc.reconcileImages(site)
			return toSiteResponse(site), nil
		}
	}

	site, err := uc.catalog.LoadDefault()
	if err != nil {
		uc.log.Error().Err(err).Msg("cargar dataset por defecto")
		return toSiteResponse(&entity.Site{Categories: []entity.Category{}}), err
	}
	if err := uc.catalog.SaveSnapshot(site); err != nil {
		// El dataset sigue siendo usable en memoria; se reporta la condición.
		uc.log.Error().Err(err).Msg("persistir dataset por defecto")
		return toSiteResponse(site), err
	}
	uc.reconcileImages(site)
	return toSiteResponse(site), nil
}

// AddProduct valida y añade un producto a la categoría indicada. Asigna id y
// CreatedAt; si el caller subió una imagen contra un id temporal, la migra al
// id definitivo antes de materializar el producto.
func (uc *CatalogUseCase) AddProduct(categoryID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("el título es obligatorio: %w", domain.ErrInvalidInput)
	}
	if categoryID == "" {
		return nil, fmt.Errorf("falta la categoría del producto: %w", domain.ErrInvalidInput)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, fmt.Errorf("el precio no puede ser negativo: %w", domain.ErrInvalidInput)
	}

	site, err := uc.loadForWrite()
	if err != nil {
		return nil, err
	}
	ci := site.FindCategory(categoryID)
	if ci < 0 {
		return nil, fmt.Errorf("categoría %s: %w", categoryID, domain.ErrNotFound)
	}

	id := in.ID
	if id == "" || strings.HasPrefix(id, TempIDPrefix) {
		newID := uuid.New().String()
		if id != "" {
			// Imagen subida antes de guardar: migrar la entrada temporal.
			uc.migrateImage(id, newID)
		}
		id = newID
	}

	imageURL := in.ImageURL
	if ref, found, err := uc.images.Retrieve(id); err == nil && found {
		imageURL = ref // el caché tiene autoridad
	}
	if imageURL == "" {
		imageURL = placeholderURL(title)
	}

	product := entity.Product{
		ID:           id,
		Title:        title,
		Description:  in.Description,
		Price:        in.Price,
		ImageURL:     imageURL,
		CreatedAt:    time.Now().UTC(),
		CategoryID:   categoryID,
		CategoryName: site.Categories[ci].Name,
	}
	site.Categories[ci].Products = append(site.Categories[ci].Products, product)

	if err := uc.catalog.SaveSnapshot(site); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("id", id).Str("categoria", categoryID).Msg("producto añadido")
	resp := toProductResponse(&product)
	return &resp, nil
}

// UpdateProduct aplica un merge superficial sobre el producto guardado: todo
// campo presente en in reemplaza al almacenado, los ausentes se conservan.
// Identidad y CreatedAt son inmutables. Resolución de imagen: explícita en la
// actualización > cacheada para ese id > marcador "No Image".
func (uc *CatalogUseCase) UpdateProduct(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if id == "" {
		return nil, fmt.Errorf("actualizar producto: %w", domain.ErrMissingID)
	}
	site, err := uc.loadForWrite()
	if err != nil {
		return nil, err
	}
	ci, pi := site.FindProduct(id)
	if pi < 0 {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	p := &site.Categories[ci].Products[pi]

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("el título no puede quedar vacío: %w", domain.ErrInvalidInput)
		}
		p.Title = title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("el precio no puede ser negativo: %w", domain.ErrInvalidInput)
		}
		price := *in.Price
		p.Price = &price
	}

	switch {
	case in.ImageURL != nil && *in.ImageURL != "":
		p.ImageURL = *in.ImageURL
	default:
		if ref, found, err := uc.images.Retrieve(id); err == nil && found {
			p.ImageURL = ref
		} else if p.ImageURL == "" {
			p.ImageURL = placeholderURL("")
		}
	}

	if err := uc.catalog.SaveSnapshot(site); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("id", id).Msg("producto actualizado")
	resp := toProductResponse(p)
	return &resp, nil
}

// DeleteProduct elimina el producto de la categoría que lo contenga y borra
// su imagen cacheada. Un id inexistente devuelve ErrNotFound sin tocar el
// snapshot; la operación es idempotente y nunca fatal.
func (uc *CatalogUseCase) DeleteProduct(id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if id == "" {
		return fmt.Errorf("eliminar producto: %w", domain.ErrMissingID)
	}
	site, err := uc.loadForWrite()
	if err != nil {
		return err
	}
	ci, pi := site.FindProduct(id)
	if pi < 0 {
		uc.log.Warn().Str("id", id).Msg("producto no encontrado al eliminar")
		return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}

	products := site.Categories[ci].Products
	site.Categories[ci].Products = append(products[:pi], products[pi+1:]...)
	if err := uc.catalog.SaveSnapshot(site); err != nil {
		return err
	}
	if err := uc.images.Delete(id); err != nil {
		// Divergencia caché/snapshot: se reconcilia en la próxima carga.
		uc.log.Warn().Err(err).Str("id", id).Msg("eliminar imagen cacheada")
	}
	uc.log.Debug().Str("id", id).Msg("producto eliminado")
	return nil
}

// GetProduct localiza un producto por id, con el caché de imágenes aplicado.
func (uc *CatalogUseCase) GetProduct(id string) (*dto.ProductResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if id == "" {
		return nil, fmt.Errorf("consultar producto: %w", domain.ErrMissingID)
	}
	site, err := uc.loadForWrite()
	if err != nil {
		return nil, err
	}
	ci, pi := site.FindProduct(id)
	if pi < 0 {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	p := site.Categories[ci].Products[pi]
	if ref, found, err := uc.images.Retrieve(id); err == nil && found {
		p.ImageURL = ref
	}
	resp := toProductResponse(&p)
	return &resp, nil
}

// ListProducts lista los productos de una categoría con paginación.
func (uc *CatalogUseCase) ListProducts(categoryID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	site, err := uc.loadForWrite()
	if err != nil {
		return nil, err
	}
	ci := site.FindCategory(categoryID)
	if ci < 0 {
		return nil, fmt.Errorf("categoría %s: %w", categoryID, domain.ErrNotFound)
	}
	page.DefaultPage()

	products := site.Categories[ci].Products
	total := len(products)
	start := page.Offset
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}

	items := make([]dto.ProductResponse, 0, end-start)
	for _, p := range products[start:end] {
		if ref, found, err := uc.images.Retrieve(p.ID); err == nil && found {
			p.ImageURL = ref
		}
		items = append(items, toProductResponse(&p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// AddCategory crea una categoría vacía con el nombre dado.
func (uc *CatalogUseCase) AddCategory(name string) (*dto.CategoryResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("el nombre de la categoría es obligatorio: %w", domain.ErrInvalidInput)
	}
	site, err := uc.loadForWrite()
	if err != nil {
		return nil, err
	}
	category := entity.Category{
		ID:       uuid.New().String(),
		Name:     name,
		Products: []entity.Product{},
	}
	site.Categories = append(site.Categories, category)
	if err := uc.catalog.SaveSnapshot(site); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("id", category.ID).Str("nombre", name).Msg("categoría añadida")
	resp := toCategoryResponse(&category)
	return &resp, nil
}

// UpdateCategory aplica un merge superficial sobre la categoría: Name
// presente reemplaza (y refresca la copia desnormalizada de sus productos);
// Translations no-nil reemplaza la lista completa, validando cada etiqueta
// de idioma como BCP-47.
func (uc *CatalogUseCase) UpdateCategory(id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if id == "" {
		return nil, fmt.Errorf("actualizar categoría: %w", domain.ErrMissingID)
	}
	site, err := uc.loadForWrite()
	if err != nil {
		return nil, err
	}
	ci := site.FindCategory(id)
	if ci < 0 {
		return nil, fmt.Errorf("categoría %s: %w", id, domain.ErrNotFound)
	}
	category := &site.Categories[ci]

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("el nombre no puede quedar vacío: %w", domain.ErrInvalidInput)
		}
		category.Name = name
		for i := range category.Products {
			category.Products[i].CategoryName = name
		}
	}
	if in.Translations != nil {
		translations := make([]entity.Translation, 0, len(in.Translations))
		for _, t := range in.Translations {
			if _, err := language.Parse(t.Lang); err != nil {
				return nil, fmt.Errorf("etiqueta de idioma %q inválida: %w", t.Lang, domain.ErrInvalidInput)
			}
			translations = append(translations, entity.Translation{Lang: t.Lang, Value: t.Value})
		}
		category.Translations = translations
	}

	if err := uc.catalog.SaveSnapshot(site); err != nil {
		return nil, err
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

// DeleteCategory elimina la categoría según la política configurada:
// cascade borra sus productos y las imágenes cacheadas de estos; unfile los
// mueve a la categoría de archivo conservando sus imágenes.
func (uc *CatalogUseCase) DeleteCategory(id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if id == "" {
		return fmt.Errorf("eliminar categoría: %w", domain.ErrMissingID)
	}
	site, err := uc.loadForWrite()
	if err != nil {
		return err
	}
	ci := site.FindCategory(id)
	if ci < 0 {
		return fmt.Errorf("categoría %s: %w", id, domain.ErrNotFound)
	}
	removed := site.Categories[ci]

	switch uc.policy {
	case DeleteUnfile:
		ti := -1
		for i := range site.Categories {
			if i != ci && site.Categories[i].Name == UnfiledCategoryName {
				ti = i
				break
			}
		}
		if ti < 0 {
			site.Categories = append(site.Categories, entity.Category{
				ID:       uuid.New().String(),
				Name:     UnfiledCategoryName,
				Products: []entity.Product{},
			})
			ti = len(site.Categories) - 1
		}
		target := &site.Categories[ti]
		for _, p := range removed.Products {
			p.CategoryID = target.ID
			p.CategoryName = target.Name
			target.Products = append(target.Products, p)
		}
	default: // cascade
		for _, p := range removed.Products {
			if err := uc.images.Delete(p.ID); err != nil {
				uc.log.Warn().Err(err).Str("id", p.ID).Msg("eliminar imagen cacheada")
			}
		}
	}

	site.Categories = append(site.Categories[:ci], site.Categories[ci+1:]...)
	if err := uc.catalog.SaveSnapshot(site); err != nil {
		return err
	}
	uc.log.Debug().Str("id", id).Str("politica", string(uc.policy)).Msg("categoría eliminada")
	return nil
}

// ReorderCategories asigna a cada categoría una prioridad igual a su posición
// (1-based) en la lista recibida y ordena el snapshot por prioridad
// ascendente antes de persistir. Ids desconocidos se ignoran.
func (uc *CatalogUseCase) ReorderCategories(orderedIDs []string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	site, err := uc.loadForWrite()
	if err != nil {
		return err
	}
	for idx, id := range orderedIDs {
		if ci := site.FindCategory(id); ci >= 0 {
			site.Categories[ci].Priority = idx + 1
		}
	}
	sort.SliceStable(site.Categories, func(i, j int) bool {
		return site.Categories[i].Priority < site.Categories[j].Priority
	})
	return uc.catalog.SaveSnapshot(site)
}

// ── internos ──────────────────────────────────────────────────────────────────

// loadForWrite exige un snapshot persistido: las mutaciones no siembran el
// dataset por defecto (eso es responsabilidad de Load).
func (uc *CatalogUseCase) loadForWrite() (*entity.Site, error) {
	site, found, err := uc.catalog.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no hay datos en el almacenamiento local: %w", domain.ErrStorageUnavailable)
	}
	return site, nil
}

// reconcileImages aplica el caché de imágenes sobre el snapshot en memoria:
// para cada producto con id, la entrada cacheada tiene autoridad sobre el
// imageUrl guardado.
func (uc *CatalogUseCase) reconcileImages(site *entity.Site) {
	for i := range site.Categories {
		for j := range site.Categories[i].Products {
			p := &site.Categories[i].Products[j]
			if p.ID == "" {
				continue
			}
			ref, found, err := uc.images.Retrieve(p.ID)
			if err != nil {
				uc.log.Warn().Err(err).Str("id", p.ID).Msg("leer imagen cacheada")
				continue
			}
			if found {
				p.ImageURL = ref
			}
		}
	}
}

// migrateImage promueve la entrada cacheada de un id temporal al definitivo.
func (uc *CatalogUseCase) migrateImage(tempID, finalID string) {
	ref, found, err := uc.images.Retrieve(tempID)
	if err != nil || !found {
		return
	}
	if err := uc.images.Store(finalID, ref); err != nil {
		uc.log.Warn().Err(err).Str("id", finalID).Msg("migrar imagen temporal")
		return
	}
	if err := uc.images.Delete(tempID); err != nil {
		uc.log.Warn().Err(err).Str("id", tempID).Msg("limpiar imagen temporal")
	}
}

// placeholderURL marcador visual cuando el producto no tiene imagen.
func placeholderURL(text string) string {
	if text == "" {
		text = "No Image"
	}
	return "https://placehold.co/100x100?text=" + url.QueryEscape(text)
}

// ── mapeo entidad → DTO ───────────────────────────────────────────────────────

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		CreatedAt:    p.CreatedAt,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
	}
}

func toCategoryResponse(c *entity.Category) dto.CategoryResponse {
	translations := make([]dto.TranslationDTO, 0, len(c.Translations))
	for _, t := range c.Translations {
		translations = append(translations, dto.TranslationDTO{Lang: t.Lang, Value: t.Value})
	}
	if len(translations) == 0 {
		translations = nil
	}
	products := make([]dto.ProductResponse, 0, len(c.Products))
	for i := range c.Products {
		products = append(products, toProductResponse(&c.Products[i]))
	}
	return dto.CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Translations: translations,
		Priority:     c.Priority,
		Products:     products,
	}
}

func toSiteResponse(s *entity.Site) *dto.SiteResponse {
	categories := make([]dto.CategoryResponse, 0, len(s.Categories))
	for i := range s.Categories {
		categories = append(categories, toCategoryResponse(&s.Categories[i]))
	}
	return &dto.SiteResponse{
		Logo:       s.Header.Logo,
		Categories: categories,
	}
}
