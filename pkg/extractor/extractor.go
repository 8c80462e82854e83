package extractor

import (
	"context"
	"fmt"
	"strings"

	"docvault-be/internal/pkg/apperrors"
)

// Page is one unit of extracted text. OCR marks pages whose text came from
// the OCR fallback rather than the native text layer.
type Page struct {
	Number int
	Text   string
	OCR    bool
}

// Failure records a page that yielded no text. Extraction is partial by
// design: one bad page does not discard the rest of the document.
type Failure struct {
	Page   int
	Reason string
}

type Result struct {
	Pages    []Page
	Failures []Failure
}

// OCRClient recognizes text in the raw document. Page is 1-based for paged
// formats; 0 means the whole input (plain images).
type OCRClient interface {
	Recognize(ctx context.Context, data []byte, page int) (string, error)
}

type Extractor struct {
	ocr OCRClient
}

func New(ocr OCRClient) *Extractor {
	return &Extractor{ocr: ocr}
}

func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	switch mimeType {
	case "application/pdf":
		native, err := readPdfPages(data)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindExtraction, "failed to parse pdf", err)
		}
		return e.resolvePages(ctx, data, native)

	case "text/plain", "text/markdown", "text/csv", "application/json":
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil, apperrors.New(apperrors.KindExtraction, "document contains no extractable text")
		}
		return &Result{Pages: []Page{{Number: 1, Text: text}}}, nil

	case "image/png", "image/jpeg", "image/tiff", "image/webp":
		if e.ocr == nil {
			return nil, apperrors.New(apperrors.KindExtraction, "ocr is not configured for image input")
		}
		text, err := e.ocr.Recognize(ctx, data, 0)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindExtraction, "ocr failed", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, apperrors.New(apperrors.KindExtraction, "ocr recognized no text")
		}
		return &Result{Pages: []Page{{Number: 1, Text: text, OCR: true}}}, nil

	default:
		return nil, apperrors.New(apperrors.KindValidation, fmt.Sprintf("unsupported content type: %s", mimeType))
	}
}

// resolvePages keeps native text where present and falls back to OCR for
// pages with an empty text layer (scanned pages). Pages that still yield
// nothing are recorded as failures instead of aborting the document.
func (e *Extractor) resolvePages(ctx context.Context, data []byte, native []string) (*Result, error) {
	result := &Result{}

	for i, text := range native {
		pageNo := i + 1
		text = strings.TrimSpace(text)
		ocrUsed := false

		if text == "" && e.ocr != nil {
			recognized, err := e.ocr.Recognize(ctx, data, pageNo)
			if err != nil {
				result.Failures = append(result.Failures, Failure{Page: pageNo, Reason: err.Error()})
				continue
			}
			text = strings.TrimSpace(recognized)
			ocrUsed = true
		}

		if text == "" {
			result.Failures = append(result.Failures, Failure{Page: pageNo, Reason: "no extractable text"})
			continue
		}

		result.Pages = append(result.Pages, Page{Number: pageNo, Text: text, OCR: ocrUsed})
	}

	if len(result.Pages) == 0 {
		return nil, apperrors.New(apperrors.KindExtraction, "no page yielded any text")
	}
	return result, nil
}
