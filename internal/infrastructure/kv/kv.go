// Package kv provee el almacén clave-valor local que simula el localStorage
// del navegador: lecturas y escrituras síncronas de valores completos por
// clave, sin escrituras parciales ni transacciones.
package kv

// Store es el contrato común de los adaptadores (memoria, archivos, SQLite
// embebido). Permite sustituir el backend real por uno en memoria en tests.
type Store interface {
	// Get devuelve el valor de la clave. found=false si no existe.
	Get(key string) (value []byte, found bool, err error)

	// Set guarda el valor completo bajo la clave, sobrescribiendo.
	Set(key string, value []byte) error

	// Delete elimina la clave. Idempotente.
	Delete(key string) error

	// Keys devuelve las claves que empiezan por prefix.
	Keys(prefix string) ([]string, error)

	// Close libera recursos del backend.
	Close() error
}
