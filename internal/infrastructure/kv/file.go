package kv

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// File adaptador que persiste cada clave como un archivo dentro de un
// directorio. El nombre de archivo es la clave escapada (percent-encoding)
// para admitir cualquier carácter.
type File struct {
	dir string
}

var _ Store = (*File)(nil)

// NewFile crea (si hace falta) el directorio y devuelve el adaptador.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key))
}

func (f *File) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("leer %s: %w", key, err)
	}
	return data, true, nil
}

func (f *File) Set(key string, value []byte) error {
	if err := os.WriteFile(f.path(key), value, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", key, err)
	}
	return nil
}

func (f *File) Delete(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("eliminar %s: %w", key, err)
	}
	return nil
}

func (f *File) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("listar %s: %w", f.dir, err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, err := url.PathUnescape(e.Name())
		if err != nil {
			continue // archivo ajeno al almacén
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *File) Close() error { return nil }
