package usecase_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-local/internal/application/dto"
	"github.com/jhoicas/catalogo-local/internal/application/usecase"
	"github.com/jhoicas/catalogo-local/internal/domain"
	"github.com/jhoicas/catalogo-local/internal/domain/repository"
	"github.com/jhoicas/catalogo-local/internal/infrastructure/kv"
	"github.com/jhoicas/catalogo-local/internal/infrastructure/localstore"
	"github.com/jhoicas/catalogo-local/pkg/logger"
)

// newCatalogUC monta el caso de uso completo sobre un almacén en memoria,
// con la política de borrado indicada.
func newCatalogUC(t *testing.T, policy usecase.DeletePolicy) (*usecase.CatalogUseCase, repository.ImageRepository, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	catalogRepo := localstore.NewCatalogRepository(store)
	imageRepo := localstore.NewImageRepository(store)
	uc := usecase.NewCatalogUseCase(catalogRepo, imageRepo, policy, logger.Nop())
	return uc, imageRepo, store
}

// seed carga el dataset por defecto y lo persiste.
func seed(t *testing.T, uc *usecase.CatalogUseCase) *dto.SiteResponse {
	t.Helper()
	site, err := uc.Load(false)
	require.NoError(t, err)
	require.NotEmpty(t, site.Categories)
	return site
}

// ── Load ──────────────────────────────────────────────────────────────────────

func TestLoad_SiembraDatasetPorDefecto(t *testing.T) {
	uc, _, store := newCatalogUC(t, usecase.DeleteCascade)

	site, err := uc.Load(false)
	require.NoError(t, err)
	assert.NotEmpty(t, site.Categories, "el primer Load debe sembrar el dataset por defecto")

	_, found, err := store.Get(localstore.SnapshotKey)
	require.NoError(t, err)
	assert.True(t, found, "el dataset sembrado debe quedar persistido")
}

func TestLoad_DevuelveSnapshotCacheado(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	seed(t, uc)

	cat, err := uc.AddCategory("Snacks")
	require.NoError(t, err)

	site, err := uc.Load(false)
	require.NoError(t, err)

	var found bool
	for _, c := range site.Categories {
		if c.ID == cat.ID {
			found = true
		}
	}
	assert.True(t, found, "Load debe devolver el snapshot mutado, no el dataset por defecto")
}

func TestLoad_ForceDefaultDescartaCambios(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	before := seed(t, uc)

	_, err := uc.AddCategory("Temporal")
	require.NoError(t, err)

	site, err := uc.Load(true)
	require.NoError(t, err)
	assert.Len(t, site.Categories, len(before.Categories),
		"forceDefault debe volver a sembrar el dataset por defecto")
}

func TestLoad_SnapshotCorruptoDegradaACatalogoVacio(t *testing.T) {
	uc, _, store := newCatalogUC(t, usecase.DeleteCascade)
	require.NoError(t, store.Set(localstore.SnapshotKey, []byte("{esto no es json")))

	site, err := uc.Load(false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	require.NotNil(t, site, "la degradación es silenciosa: catálogo vacío usable")
	assert.Empty(t, site.Categories)
}

func TestLoad_ImagenCacheadaTienePrecedencia(t *testing.T) {
	uc, images, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)

	productID := site.Categories[0].Products[0].ID
	stored := site.Categories[0].Products[0].ImageURL
	cached := "data:image/png;base64,Y2FjaGVhZGE="
	require.NotEqual(t, stored, cached)
	require.NoError(t, images.Store(productID, cached))

	site, err := uc.Load(false)
	require.NoError(t, err)
	assert.Equal(t, cached, site.Categories[0].Products[0].ImageURL,
		"si existen imagen guardada y cacheada, Load debe mostrar la cacheada")
}

// ── AddProduct ────────────────────────────────────────────────────────────────

func TestAddProduct_EscenarioSnacks(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	seed(t, uc)

	cat, err := uc.AddCategory("Snacks")
	require.NoError(t, err)

	price := decimal.NewFromFloat(2.5)
	p, err := uc.AddProduct(cat.ID, dto.CreateProductRequest{Title: "Chips", Price: &price})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, "Snacks", p.CategoryName)

	site, err := uc.Load(false)
	require.NoError(t, err)
	var matches int
	for _, c := range site.Categories {
		for _, item := range c.Products {
			if item.ID == p.ID {
				matches++
				assert.Equal(t, "Snacks", c.Name)
				require.NotNil(t, item.Price)
				assert.True(t, item.Price.Equal(price), "el precio debe sobrevivir el round-trip")
			}
		}
	}
	assert.Equal(t, 1, matches, "el producto debe aparecer exactamente una vez bajo Snacks")
}

func TestAddProduct_Validaciones(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)
	catID := site.Categories[0].ID

	_, err := uc.AddProduct(catID, dto.CreateProductRequest{Title: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "título vacío")

	_, err = uc.AddProduct("", dto.CreateProductRequest{Title: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "categoría ausente")

	negative := decimal.NewFromInt(-1)
	_, err = uc.AddProduct(catID, dto.CreateProductRequest{Title: "X", Price: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio negativo")

	_, err = uc.AddProduct("no-existe", dto.CreateProductRequest{Title: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "categoría desconocida")
}

func TestAddProduct_AsignaMarcadorSinImagen(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)

	p, err := uc.AddProduct(site.Categories[0].ID, dto.CreateProductRequest{Title: "Sin Foto"})
	require.NoError(t, err)
	assert.Contains(t, p.ImageURL, "placehold.co")
}

func TestAddProduct_MigraImagenDeIdTemporal(t *testing.T) {
	uc, images, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)

	tempID := "temp_1700000000000"
	cached := "data:image/png;base64,dGVtcG9yYWw="
	require.NoError(t, images.Store(tempID, cached))

	p, err := uc.AddProduct(site.Categories[0].ID, dto.CreateProductRequest{ID: tempID, Title: "Con Foto"})
	require.NoError(t, err)
	assert.NotEqual(t, tempID, p.ID, "el id temporal no debe persistirse")
	assert.Equal(t, cached, p.ImageURL, "la imagen temporal se promueve al producto")

	_, found, err := images.Retrieve(tempID)
	require.NoError(t, err)
	assert.False(t, found, "la entrada temporal debe eliminarse tras la migración")

	ref, found, err := images.Retrieve(p.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, cached, ref)
}

// ── UpdateProduct ─────────────────────────────────────────────────────────────

func TestUpdateProduct_MergeParcial(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)

	price := decimal.NewFromInt(10)
	p, err := uc.AddProduct(site.Categories[0].ID, dto.CreateProductRequest{
		Title:       "Original",
		Description: "descripción original",
		Price:       &price,
	})
	require.NoError(t, err)

	title := "Renombrado"
	updated, err := uc.UpdateProduct(p.ID, dto.UpdateProductRequest{Title: &title})
	require.NoError(t, err)

	// Ley de merge parcial: lo presente reemplaza, lo ausente se conserva.
	assert.Equal(t, "Renombrado", updated.Title)
	assert.Equal(t, "descripción original", updated.Description)
	require.NotNil(t, updated.Price)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, p.ID, updated.ID, "la identidad es inmutable")
	assert.Equal(t, p.CreatedAt, updated.CreatedAt, "CreatedAt es inmutable")

	got, err := uc.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renombrado", got.Title)
	assert.Equal(t, "descripción original", got.Description)
}

func TestUpdateProduct_Errores(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	seed(t, uc)

	_, err := uc.UpdateProduct("", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingID)

	_, err = uc.UpdateProduct("no-existe", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProduct_ImagenCacheadaSeAplica(t *testing.T) {
	uc, images, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)

	p, err := uc.AddProduct(site.Categories[0].ID, dto.CreateProductRequest{Title: "Producto"})
	require.NoError(t, err)

	cached := "data:image/png;base64,c3ViaWRh"
	require.NoError(t, images.Store(p.ID, cached))

	title := "X"
	updated, err := uc.UpdateProduct(p.ID, dto.UpdateProductRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, cached, updated.ImageURL,
		"sin imagen explícita en la actualización, gana la cacheada")
}

func TestUpdateProduct_ImagenExplicitaGanaALaCacheada(t *testing.T) {
	uc, images, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)

	p, err := uc.AddProduct(site.Categories[0].ID, dto.CreateProductRequest{Title: "Producto"})
	require.NoError(t, err)
	require.NoError(t, images.Store(p.ID, "data:image/png;base64,Y2FjaGU="))

	explicit := "https://cdn.example.com/nueva.png"
	updated, err := uc.UpdateProduct(p.ID, dto.UpdateProductRequest{ImageURL: &explicit})
	require.NoError(t, err)
	assert.Equal(t, explicit, updated.ImageURL)
}

// ── DeleteProduct ─────────────────────────────────────────────────────────────

func TestDeleteProduct_EliminaProductoEImagen(t *testing.T) {
	uc, images, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)

	p, err := uc.AddProduct(site.Categories[0].ID, dto.CreateProductRequest{Title: "Efímero"})
	require.NoError(t, err)
	require.NoError(t, images.Store(p.ID, "data:image/png;base64,Zm90bw=="))

	require.NoError(t, uc.DeleteProduct(p.ID))

	_, err = uc.GetProduct(p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, found, err := images.Retrieve(p.ID)
	require.NoError(t, err)
	assert.False(t, found, "la imagen cacheada debe borrarse junto con el producto")
}

func TestDeleteProduct_IdInexistenteNoAlteraSnapshot(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	before := seed(t, uc)

	err := uc.DeleteProduct("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound, "el fallo se reporta tipado, no silenciado")

	after, err := uc.Load(false)
	require.NoError(t, err)
	assert.Equal(t, before, after, "borrar un id ya ausente no debe alterar el snapshot")

	// Idempotencia: repetir tampoco es fatal.
	err = uc.DeleteProduct("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Categorías ────────────────────────────────────────────────────────────────

func TestAddCategory_NombreVacio(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	seed(t, uc)

	_, err := uc.AddCategory("   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateCategory_RenombraYRefrescaProductos(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)
	catID := site.Categories[0].ID
	require.NotEmpty(t, site.Categories[0].Products)

	name := "Pizzas Artesanales"
	updated, err := uc.UpdateCategory(catID, dto.UpdateCategoryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	for _, p := range updated.Products {
		assert.Equal(t, name, p.CategoryName, "la copia desnormalizada debe refrescarse")
	}
}

func TestUpdateCategory_TraduccionesValidadas(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)
	catID := site.Categories[0].ID

	_, err := uc.UpdateCategory(catID, dto.UpdateCategoryRequest{
		Translations: []dto.TranslationDTO{{Lang: "no es una etiqueta", Value: "X"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "etiqueta BCP-47 inválida")

	updated, err := uc.UpdateCategory(catID, dto.UpdateCategoryRequest{
		Translations: []dto.TranslationDTO{{Lang: "en-US", Value: "Pizzas"}, {Lang: "fr", Value: "Pizzas"}},
	})
	require.NoError(t, err)
	assert.Len(t, updated.Translations, 2)
}

func TestDeleteCategory_CascadeBorraHijosEImagenes(t *testing.T) {
	uc, images, _ := newCatalogUC(t, usecase.DeleteCascade)
	seed(t, uc)

	cat, err := uc.AddCategory("Desechable")
	require.NoError(t, err)
	p, err := uc.AddProduct(cat.ID, dto.CreateProductRequest{Title: "Hijo"})
	require.NoError(t, err)
	require.NoError(t, images.Store(p.ID, "data:image/png;base64,aGlqbw=="))

	require.NoError(t, uc.DeleteCategory(cat.ID))

	_, err = uc.GetProduct(p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, found, err := images.Retrieve(p.ID)
	require.NoError(t, err)
	assert.False(t, found, "cascade borra también las imágenes de los hijos")
}

func TestDeleteCategory_UnfileMueveHijos(t *testing.T) {
	uc, images, _ := newCatalogUC(t, usecase.DeleteUnfile)
	seed(t, uc)

	cat, err := uc.AddCategory("Desechable")
	require.NoError(t, err)
	p, err := uc.AddProduct(cat.ID, dto.CreateProductRequest{Title: "Huérfano"})
	require.NoError(t, err)
	cached := "data:image/png;base64,aHVlcmZhbm8="
	require.NoError(t, images.Store(p.ID, cached))

	require.NoError(t, uc.DeleteCategory(cat.ID))

	got, err := uc.GetProduct(p.ID)
	require.NoError(t, err, "unfile conserva el producto")
	assert.Equal(t, usecase.UnfiledCategoryName, got.CategoryName)
	assert.Equal(t, cached, got.ImageURL, "unfile conserva la imagen cacheada")
}

func TestDeleteCategory_Errores(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	seed(t, uc)

	assert.ErrorIs(t, uc.DeleteCategory(""), domain.ErrMissingID)
	assert.ErrorIs(t, uc.DeleteCategory("no-existe"), domain.ErrNotFound)
}

// ── Reordenamiento ────────────────────────────────────────────────────────────

func TestReorderCategories_AsignaPrioridadesYOrdena(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	site := seed(t, uc)
	require.GreaterOrEqual(t, len(site.Categories), 2)

	c1 := site.Categories[0].ID
	c2 := site.Categories[1].ID

	// Invertimos las dos primeras y dejamos el resto al final.
	order := []string{c2, c1}
	for _, c := range site.Categories[2:] {
		order = append(order, c.ID)
	}
	require.NoError(t, uc.ReorderCategories(order))

	after, err := uc.Load(false)
	require.NoError(t, err)
	assert.Equal(t, c2, after.Categories[0].ID)
	assert.Equal(t, c1, after.Categories[1].ID)
	assert.Equal(t, 1, after.Categories[0].Priority)
	assert.Equal(t, 2, after.Categories[1].Priority)
}

// ── Listado paginado ──────────────────────────────────────────────────────────

func TestListProducts_Paginacion(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	seed(t, uc)

	cat, err := uc.AddCategory("Paginada")
	require.NoError(t, err)
	for _, title := range []string{"A", "B", "C"} {
		_, err := uc.AddProduct(cat.ID, dto.CreateProductRequest{Title: title})
		require.NoError(t, err)
	}

	page1, err := uc.ListProducts(cat.ID, dto.PageRequest{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, page1.Items, 2)
	assert.Equal(t, 3, page1.Page.Total)
	assert.Equal(t, "A", page1.Items[0].Title, "orden de inserción")

	page2, err := uc.ListProducts(cat.ID, dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page2.Items, 1)
	assert.Equal(t, "C", page2.Items[0].Title)
}

// ── Varios ────────────────────────────────────────────────────────────────────

func TestMutacionSinSnapshotPrevio(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)

	// Sin Load previo no hay snapshot que mutar.
	_, err := uc.AddCategory("Snacks")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestLoad_RoundTripEstable(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	seed(t, uc)

	cat, err := uc.AddCategory("Snacks")
	require.NoError(t, err)
	price := decimal.NewFromFloat(2.5)
	_, err = uc.AddProduct(cat.ID, dto.CreateProductRequest{Title: "Chips", Price: &price})
	require.NoError(t, err)

	first, err := uc.Load(false)
	require.NoError(t, err)
	second, err := uc.Load(false)
	require.NoError(t, err)
	assert.Equal(t, first, second, "serializar y volver a cargar no debe alterar el snapshot")
}

func TestErroresSonInspeccionables(t *testing.T) {
	uc, _, _ := newCatalogUC(t, usecase.DeleteCascade)
	seed(t, uc)

	_, err := uc.GetProduct("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingID))
}
