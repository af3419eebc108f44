package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde
// env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	Storage StorageConfig
	AI      AIConfig
	Catalog CatalogConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// StorageConfig backend del almacén clave-valor local.
type StorageConfig struct {
	Backend string // memory, file, sqlite
	Path    string // directorio (file) o archivo .db (sqlite)
}

// AIConfig endpoint de generación de imágenes por IA. Sin token, la
// generación devuelve error y el resto de la app sigue operativa.
type AIConfig struct {
	BaseURL string
	Token   string
}

// CatalogConfig políticas del catálogo.
type CatalogConfig struct {
	// DeletePolicy qué hacer con los productos al eliminar su categoría:
	// "cascade" los elimina junto con sus imágenes cacheadas; "unfile" los
	// mueve a la categoría de archivo.
	DeletePolicy string
}

// Load lee la configuración desde variables de entorno (y opcionalmente
// desde archivo). Las env vars tienen prioridad. Nombres esperados: APP_ENV,
// STORAGE_BACKEND, AI_API_TOKEN, CATALOG_DELETE_POLICY, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "catalogo-local"),
		},
		Storage: StorageConfig{
			Backend: getString(v, "STORAGE_BACKEND", "file"),
			Path:    getString(v, "STORAGE_PATH", "./data"),
		},
		AI: AIConfig{
			BaseURL: getString(v, "AI_API_BASE_URL", ""),
			Token:   getString(v, "AI_API_TOKEN", ""),
		},
		Catalog: CatalogConfig{
			DeletePolicy: getString(v, "CATALOG_DELETE_POLICY", "cascade"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}
