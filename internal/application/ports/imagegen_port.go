package ports

import "context"

// ImageGenerator define el puerto de salida hacia el servicio de generación
// de imágenes a partir de texto. Cualquier adaptador (HTTP real, mock) debe
// implementar esta interfaz. Siguiendo el principio de inversión de
// dependencias (DIP), la aplicación solo conoce este contrato, no la
// implementación concreta.
//
// El servicio se trata como no confiable: sin token o ante una falla de red
// el adaptador devuelve error (envolviendo ErrExternalService). Un solo
// intento por acción de usuario; no hay política de reintentos.
type ImageGenerator interface {
	// Generate pide una imagen para el texto dado y devuelve su URL remota.
	// El contexto debe llevar un timeout para evitar bloqueos.
	Generate(ctx context.Context, text string) (string, error)
}
