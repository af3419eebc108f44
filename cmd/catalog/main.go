// catalog administra un catálogo de productos persistido en un almacén
// clave-valor local, el equivalente de línea de comandos del editor web.
//
// Uso: catalog <comando> [args]
//
//	load [--default]                carga (o siembra) el catálogo y lo imprime
//	get <producto-id>               muestra un producto
//	add <categoria-id> <título> [precio]
//	update-title <producto-id> <título>
//	delete <producto-id>
//	add-category <nombre>
//	del-category <categoria-id>
//	reorder <categoria-id> ...
//	upload <producto-id> <archivo>  sube una imagen local al caché
//	generate <producto-id> <texto>  genera una imagen por IA y la cachea
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-local/internal/application/dto"
	"github.com/jhoicas/catalogo-local/internal/application/usecase"
	infraai "github.com/jhoicas/catalogo-local/internal/infrastructure/ai"
	"github.com/jhoicas/catalogo-local/internal/infrastructure/kv"
	"github.com/jhoicas/catalogo-local/internal/infrastructure/localstore"
	"github.com/jhoicas/catalogo-local/pkg/config"
	"github.com/jhoicas/catalogo-local/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	if len(os.Args) < 2 {
		usage()
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.Close()

	catalogRepo := localstore.NewCatalogRepository(store)
	imageRepo := localstore.NewImageRepository(store)
	imageGen := infraai.NewImageService(cfg.AI.BaseURL, cfg.AI.Token)

	catalogUC := usecase.NewCatalogUseCase(catalogRepo, imageRepo, usecase.DeletePolicy(cfg.Catalog.DeletePolicy), log)
	imageUC := usecase.NewImageUseCase(imageRepo, imageGen, log)

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "load":
		force := len(args) > 0 && args[0] == "--default"
		site, err := catalogUC.Load(force)
		if err != nil {
			// Degradación silenciosa: el catálogo vacío sigue siendo usable.
			log.Warn().Err(err).Msg("catálogo degradado")
		}
		printSite(site)

	case "get":
		requireArgs(args, 1)
		p, err := catalogUC.GetProduct(args[0])
		exitOn(log, err)
		printProduct(p)

	case "add":
		requireArgs(args, 2)
		req := dto.CreateProductRequest{Title: args[1]}
		if len(args) > 2 {
			price, err := decimal.NewFromString(args[2])
			if err != nil {
				log.Fatal().Str("precio", args[2]).Msg("precio inválido")
			}
			req.Price = &price
		}
		p, err := catalogUC.AddProduct(args[0], req)
		exitOn(log, err)
		fmt.Printf("producto creado: %s\n", p.ID)

	case "update-title":
		requireArgs(args, 2)
		title := args[1]
		p, err := catalogUC.UpdateProduct(args[0], dto.UpdateProductRequest{Title: &title})
		exitOn(log, err)
		printProduct(p)

	case "delete":
		requireArgs(args, 1)
		if err := catalogUC.DeleteProduct(args[0]); err != nil {
			// No fatal: el flujo original continuaba como si hubiera borrado.
			log.Warn().Err(err).Msg("eliminar producto")
		}

	case "add-category":
		requireArgs(args, 1)
		c, err := catalogUC.AddCategory(strings.Join(args, " "))
		exitOn(log, err)
		fmt.Printf("categoría creada: %s\n", c.ID)

	case "del-category":
		requireArgs(args, 1)
		exitOn(log, catalogUC.DeleteCategory(args[0]))

	case "reorder":
		requireArgs(args, 1)
		exitOn(log, catalogUC.ReorderCategories(args))

	case "upload":
		requireArgs(args, 2)
		content, err := os.ReadFile(args[1])
		if err != nil {
			log.Fatal().Err(err).Str("archivo", args[1]).Msg("leer archivo")
		}
		ref, err := imageUC.StoreUpload(content, args[0])
		exitOn(log, err)
		fmt.Printf("imagen cacheada (%d bytes codificados)\n", len(ref))

	case "generate":
		requireArgs(args, 2)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		url, err := imageUC.Generate(ctx, strings.Join(args[1:], " "), args[0])
		exitOn(log, err)
		fmt.Printf("imagen generada: %s\n", url)

	default:
		usage()
	}
}

// openStore elige el backend del almacén clave-valor según configuración.
func openStore(cfg config.StorageConfig) (kv.Store, error) {
	switch cfg.Backend {
	case "memory":
		return kv.NewMemory(), nil
	case "sqlite":
		return kv.OpenSQLite(cfg.Path)
	case "file", "":
		return kv.NewFile(cfg.Path)
	default:
		return nil, fmt.Errorf("backend de almacenamiento desconocido: %s", cfg.Backend)
	}
}

func printSite(site *dto.SiteResponse) {
	for _, c := range site.Categories {
		fmt.Printf("%s  %s  (%d productos)\n", c.ID, c.Name, len(c.Products))
		for i := range c.Products {
			printProduct(&c.Products[i])
		}
	}
}

func printProduct(p *dto.ProductResponse) {
	price := "-"
	if p.Price != nil {
		price = p.Price.String()
	}
	fmt.Printf("  %s  %-30s  %s\n", p.ID, p.Title, price)
}

func requireArgs(args []string, n int) {
	if len(args) < n {
		usage()
	}
}

func exitOn(log *logger.Logger, err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("operación fallida")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `uso: catalog <comando> [args]
  load [--default]
  get <producto-id>
  add <categoria-id> <título> [precio]
  update-title <producto-id> <título>
  delete <producto-id>
  add-category <nombre>
  del-category <categoria-id>
  reorder <categoria-id> ...
  upload <producto-id> <archivo>
  generate <producto-id> <texto>`)
	os.Exit(2)
}
