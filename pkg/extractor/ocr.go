package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPOCRClient talks to a PaddleOCR-style sidecar service.
type HTTPOCRClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOCRClient(baseURL string) *HTTPOCRClient {
	return &HTTPOCRClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type ocrRequest struct {
	FileBase64 string `json:"file_base64"`
	Page       int    `json:"page,omitempty"`
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (c *HTTPOCRClient) Recognize(ctx context.Context, data []byte, page int) (string, error) {
	payload, err := json.Marshal(ocrRequest{
		FileBase64: base64.StdEncoding.EncodeToString(data),
		Page:       page,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read ocr response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed ocrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode ocr response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ocr service error: %s", parsed.Error)
	}

	return parsed.Text, nil
}
