package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/catalogo-local/internal/application/ports"
	"github.com/jhoicas/catalogo-local/internal/domain"
	"github.com/jhoicas/catalogo-local/internal/domain/repository"
	"github.com/jhoicas/catalogo-local/pkg/logger"
)

const (
	// MaxImageBytes tamaño máximo de una imagen subida (5 MB).
	MaxImageBytes = 5 * 1024 * 1024

	// TempIDPrefix prefijo de los ids temporales asignados a productos aún
	// no guardados, para poder cachear su imagen antes de persistirlos.
	TempIDPrefix = "temp_"
)

// allowedImageTypes tipos MIME admitidos en subidas locales.
var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// ImageUseCase gestiona el caché de imágenes: subidas locales codificadas
// como data URI autocontenido, URLs remotas de generación IA guardadas tal
// cual, e ids temporales para productos sin guardar.
type ImageUseCase struct {
	images repository.ImageRepository
	gen    ports.ImageGenerator
	log    *logger.Logger
}

// NewImageUseCase construye el caso de uso. gen puede ser nil si la
// generación IA no está configurada.
func NewImageUseCase(images repository.ImageRepository, gen ports.ImageGenerator, log *logger.Logger) *ImageUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ImageUseCase{images: images, gen: gen, log: log}
}

// StoreUpload valida el contenido subido (tipo dentro de la lista admitida,
// tamaño ≤ 5 MB), lo codifica como data URI autocontenido (no hace falta
// red para volver a mostrarlo) y lo guarda bajo el id del producto.
// Una imagen rechazada no deja entrada en el caché.
func (uc *ImageUseCase) StoreUpload(content []byte, productID string) (string, error) {
	if productID == "" {
		return "", fmt.Errorf("guardar imagen: %w", domain.ErrMissingID)
	}
	if len(content) == 0 {
		return "", fmt.Errorf("el archivo está vacío: %w", domain.ErrInvalidImage)
	}
	if len(content) > MaxImageBytes {
		return "", fmt.Errorf("la imagen supera el máximo de 5 MB: %w", domain.ErrInvalidImage)
	}
	mime := http.DetectContentType(content)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("el archivo no es una imagen: %w", domain.ErrInvalidImage)
	}
	if _, ok := allowedImageTypes[mime]; !ok {
		return "", fmt.Errorf("formato no soportado, se admite JPEG, PNG, GIF o WebP: %w", domain.ErrInvalidImage)
	}

	ref := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content)
	if err := uc.images.Store(productID, ref); err != nil {
		return "", err
	}
	uc.log.Debug().Str("id", productID).Str("mime", mime).Int("bytes", len(content)).Msg("imagen subida al caché")
	return ref, nil
}

// StoreGeneratedURL guarda la URL remota tal cual, sin recodificar, para no
// inflar el almacén con payloads grandes.
func (uc *ImageUseCase) StoreGeneratedURL(imageURL, productID string) (string, error) {
	if productID == "" {
		return "", fmt.Errorf("guardar imagen generada: %w", domain.ErrMissingID)
	}
	if strings.TrimSpace(imageURL) == "" {
		return "", fmt.Errorf("URL de imagen vacía: %w", domain.ErrInvalidInput)
	}
	if err := uc.images.Store(productID, imageURL); err != nil {
		return "", err
	}
	return imageURL, nil
}

// Retrieve devuelve la referencia cacheada del producto. found=false si no
// hay entrada (la ausencia no es error).
func (uc *ImageUseCase) Retrieve(productID string) (string, bool, error) {
	if productID == "" {
		return "", false, nil
	}
	return uc.images.Retrieve(productID)
}

// Delete elimina la entrada cacheada. Idempotente.
func (uc *ImageUseCase) Delete(productID string) error {
	if productID == "" {
		return nil
	}
	return uc.images.Delete(productID)
}

// TempID genera un id temporal (temp_<timestamp>) para cachear la imagen de
// un producto que aún no se ha guardado. AddProduct migra la entrada al id
// definitivo en el primer guardado.
func (uc *ImageUseCase) TempID() string {
	return fmt.Sprintf("%s%d", TempIDPrefix, time.Now().UnixMilli())
}

// Generate pide una imagen al servicio de IA y, si responde, guarda la URL
// bajo el id del producto. Un solo intento; sin token o ante una falla de
// red devuelve el error tipado (ErrExternalService) ya registrado.
func (uc *ImageUseCase) Generate(ctx context.Context, text, productID string) (string, error) {
	if productID == "" {
		return "", fmt.Errorf("generar imagen: %w", domain.ErrMissingID)
	}
	if uc.gen == nil {
		return "", fmt.Errorf("generador de imágenes no configurado: %w", domain.ErrExternalService)
	}
	imageURL, err := uc.gen.Generate(ctx, text)
	if err != nil {
		uc.log.Error().Err(err).Str("id", productID).Msg("generación de imagen fallida")
		return "", err
	}
	if _, err := uc.StoreGeneratedURL(imageURL, productID); err != nil {
		return "", err
	}
	uc.log.Debug().Str("id", productID).Str("url", imageURL).Msg("imagen generada y cacheada")
	return imageURL, nil
}
