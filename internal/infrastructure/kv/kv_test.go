package kv_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-local/internal/infrastructure/kv"
)

// newStores un almacén fresco por backend, todos contra directorios
// temporales del test.
func newStores(t *testing.T) map[string]kv.Store {
	t.Helper()

	file, err := kv.NewFile(t.TempDir())
	require.NoError(t, err)

	sqlite, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)

	return map[string]kv.Store{
		"memory": kv.NewMemory(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			_, found, err := store.Get("ausente")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.Set("k", []byte("v1")))
			got, found, err := store.Get("k")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, []byte("v1"), got)

			// Sobrescritura completa, como localStorage.setItem.
			require.NoError(t, store.Set("k", []byte("v2")))
			got, _, err = store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)

			require.NoError(t, store.Delete("k"))
			_, found, err = store.Get("k")
			require.NoError(t, err)
			assert.False(t, found)

			// Idempotente.
			require.NoError(t, store.Delete("k"))
		})
	}
}

func TestStore_KeysPorPrefijo(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			require.NoError(t, store.Set("product_image_1", []byte("a")))
			require.NoError(t, store.Set("product_image_2", []byte("b")))
			require.NoError(t, store.Set("product_site_data", []byte("c")))

			keys, err := store.Keys("product_image_")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"product_image_1", "product_image_2"}, keys,
				"el guion bajo del prefijo debe compararse literal, no como comodín")

			all, err := store.Keys("")
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestStore_ClavesConCaracteresEspeciales(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			key := "producto/raro %100_ñ"
			require.NoError(t, store.Set(key, []byte("x")))

			got, found, err := store.Get(key)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, []byte("x"), got)

			keys, err := store.Keys("producto/")
			require.NoError(t, err)
			assert.Equal(t, []string{key}, keys)
		})
	}
}

func TestMemory_CopiaDefensiva(t *testing.T) {
	store := kv.NewMemory()

	original := []byte("intacto")
	require.NoError(t, store.Set("k", original))
	original[0] = 'X'

	got, _, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("intacto"), got, "mutar el slice del caller no debe afectar al almacén")

	got[0] = 'Y'
	again, _, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("intacto"), again, "mutar el slice devuelto no debe afectar al almacén")
}

func TestFile_PersisteEntreInstancias(t *testing.T) {
	dir := t.TempDir()

	first, err := kv.NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", []byte("persistente")))
	require.NoError(t, first.Close())

	second, err := kv.NewFile(dir)
	require.NoError(t, err)
	got, found, err := second.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("persistente"), got)
}

func TestSQLite_PersisteEntreConexiones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", []byte("persistente")))
	require.NoError(t, first.Close())

	second, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()
	got, found, err := second.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("persistente"), got)
}
