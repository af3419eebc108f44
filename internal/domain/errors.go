package domain

import "errors"

// Errores de dominio (sin dependencias externas). Ninguna operación lanza
// panic: toda falla se reporta como uno de estos centinelas envuelto con %w,
// inspeccionable vía errors.Is.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrMissingID          = errors.New("falta el identificador")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrStorageUnavailable = errors.New("almacenamiento local no disponible")
	ErrInvalidImage       = errors.New("imagen inválida")
	ErrExternalService    = errors.New("servicio externo no disponible")
)
