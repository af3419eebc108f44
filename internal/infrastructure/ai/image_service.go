package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/catalogo-local/internal/application/ports"
	"github.com/jhoicas/catalogo-local/internal/domain"
)

// Verificar en tiempo de compilación que ImageService implementa ImageGenerator.
var _ ports.ImageGenerator = (*ImageService)(nil)

const defaultBaseURL = "https://be-tan-theta.vercel.app"

// ImageService adaptador que implementa ImageGenerator llamando al endpoint
// HTTP de texto-a-imagen con bearer token. Usa únicamente la librería
// estándar de Go (net/http) para no añadir dependencias externas.
//
// El servicio es no confiable: cualquier falla (token ausente, red, respuesta
// sin URL) se envuelve en domain.ErrExternalService. Un intento por llamada;
// los reintentos quedan en manos del usuario.
type ImageService struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewImageService construye el adaptador. baseURL vacío usa el endpoint por
// defecto; el token se configura vía AI_API_TOKEN.
func NewImageService(baseURL, token string) *ImageService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ImageService{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 20 * time.Second, // timeout de red; el caller también pone WithTimeout
		},
	}
}

// ── Estructuras del contrato HTTP ─────────────────────────────────────────────

type imageRequest struct {
	Text string `json:"text"`
}

// imageResponse el backend devuelve s3Url o imageUrl según la versión;
// se toma la primera no vacía.
type imageResponse struct {
	S3URL    string `json:"s3Url"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}

// Generate pide una imagen para el texto dado y devuelve su URL remota.
func (s *ImageService) Generate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("IA: descripción de imagen vacía: %w", domain.ErrInvalidInput)
	}
	if s.token == "" {
		return "", fmt.Errorf("IA: AI_API_TOKEN no configurado: %w", domain.ErrExternalService)
	}

	body, err := json.Marshal(imageRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("IA: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/ai/image", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("IA: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("IA: timeout o cancelación: %w: %v", domain.ErrExternalService, ctx.Err())
		}
		return "", fmt.Errorf("IA: llamada HTTP fallida: %w: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("IA: leer respuesta: %w: %v", domain.ErrExternalService, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp imageResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Message != "" {
			return "", fmt.Errorf("IA: HTTP %d: %s: %w", resp.StatusCode, errResp.Message, domain.ErrExternalService)
		}
		return "", fmt.Errorf("IA: HTTP %d: %w", resp.StatusCode, domain.ErrExternalService)
	}

	var imgResp imageResponse
	if err := json.Unmarshal(rawBody, &imgResp); err != nil {
		return "", fmt.Errorf("IA: respuesta no es JSON válido: %w: %v", domain.ErrExternalService, err)
	}

	url := imgResp.S3URL
	if url == "" {
		url = imgResp.ImageURL
	}
	if url == "" {
		return "", fmt.Errorf("IA: respuesta sin URL de imagen: %w", domain.ErrExternalService)
	}
	return url, nil
}
