package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pharmasocial/internal/config"
)

// Generator produces caption text and image data for a post draft.
// Both operations take the draft title and the resolved category name;
// they return an error when the upstream service fails or responds
// with nothing usable. Callers decide how much of that error to show.
type Generator interface {
	GenerateCaption(ctx context.Context, title, categoryName string) (string, error)
	// GenerateImage returns the image as a data URI
	// (data:{mime};base64,{data}) ready to be stored as a post's
	// image URL.
	GenerateImage(ctx context.Context, title, categoryName string) (string, error)
}

// ErrMissingAPIKey is returned when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("generation api key is not configured")

// ErrEmptyResult is returned when the service answered but produced no
// usable caption or image part.
var ErrEmptyResult = errors.New("generation returned no usable result")

// GeminiClient calls the Gemini generateContent REST endpoint. It is
// stateless; one instance is shared across requests.
type GeminiClient struct {
	apiKey       string
	baseURL      string
	captionModel string
	imageModel   string
	httpClient   *http.Client
}

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.GenerationConfig) *GeminiClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiClient{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		captionModel: cfg.CaptionModel,
		imageModel:   cfg.ImageModel,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ImageConfig *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateCaption asks for a ready-to-publish Italian social caption.
// The output constraints (length, emoji, hashtags, closing call to
// action, no markdown) are enforced by the prompt only.
func (c *GeminiClient) GenerateCaption(ctx context.Context, title, categoryName string) (string, error) {
	prompt := fmt.Sprintf(`Agisci come un Social Media Manager esperto per farmacie.
Scrivi un post social (Instagram/Facebook) coinvolgente, professionale ed empatico basato sui seguenti dettagli:

Argomento: %s
Categoria: %s

Il post deve:
1. Avere una lunghezza media (circa 50-80 parole).
2. Includere emoji pertinenti.
3. Includere 3-4 hashtag rilevanti in italiano.
4. Avere una "Call to Action" finale che invita in farmacia.
5. Non usare formattazione markdown (niente grassetto o asterischi), solo testo puro.`, title, categoryName)

	resp, err := c.generate(ctx, c.captionModel, generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if text := strings.TrimSpace(p.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrEmptyResult
}

// GenerateImage asks for a square, photorealistic pharmacy-styled
// image and returns it as a data URI.
func (c *GeminiClient) GenerateImage(ctx context.Context, title, categoryName string) (string, error) {
	prompt := fmt.Sprintf(`Genera un'immagine fotorealistica, professionale, luminosa e pulita per un post Instagram di una farmacia.
L'immagine deve rappresentare visivamente questo argomento: "%s".
Contesto: %s.
Stile: Fotografia di alta qualità, colori rassicuranti (bianco, verde acqua, blu), composizione moderna.
Nessun testo all'interno dell'immagine.`, title, categoryName)

	resp, err := c.generate(ctx, c.imageModel, generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ImageConfig: &imageConfig{AspectRatio: "1:1"}},
	})
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return fmt.Sprintf("data:%s;base64,%s", p.InlineData.MimeType, p.InlineData.Data), nil
			}
		}
	}
	return "", ErrEmptyResult
}

func (c *GeminiClient) generate(ctx context.Context, model string, reqBody generateRequest) (*generateResponse, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}
	return &decoded, nil
}
