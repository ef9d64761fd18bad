package ocr

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ppiankov/pricelens/internal/model"
)

// TesseractEngine recognizes text lines with Tesseract through gosseract.
// A client is not safe for concurrent use; the Extractor serializes access.
type TesseractEngine struct {
	language string
	prefix   string
	client   *gosseract.Client
}

// NewTesseractEngine creates an engine. The client is created lazily by Init.
func NewTesseractEngine(language, tessdataPrefix string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{language: language, prefix: tessdataPrefix}
}

// Init creates the client and forces Tesseract to load its models by recognizing
// a blank image, so the first real capture does not pay for it.
func (e *TesseractEngine) Init() error {
	client := gosseract.NewClient()

	if e.prefix != "" {
		if err := client.SetTessdataPrefix(e.prefix); err != nil {
			client.Close()
			return fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(e.language); err != nil {
		client.Close()
		return fmt.Errorf("failed to set language %q: %w", e.language, err)
	}
	// Tooltips are short names, not dictionary words
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		client.Close()
		return fmt.Errorf("failed to set PSM: %w", err)
	}

	blank, err := encodePNG(image.NewGray(image.Rect(0, 0, 32, 32)))
	if err != nil {
		client.Close()
		return err
	}
	if err := client.SetImageFromBytes(blank); err != nil {
		client.Close()
		return fmt.Errorf("failed to set warm-up image: %w", err)
	}
	if _, err := client.Text(); err != nil {
		client.Close()
		return fmt.Errorf("failed to initialize tesseract: %w", err)
	}

	e.client = client
	return nil
}

// Recognize returns one fragment per detected text line
func (e *TesseractEngine) Recognize(img image.Image) ([]model.TextFragment, error) {
	if e.client == nil {
		return nil, fmt.Errorf("engine not initialized")
	}

	buf, err := encodePNG(img)
	if err != nil {
		return nil, err
	}
	if err := e.client.SetImageFromBytes(buf); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("failed to get boxes: %w", err)
	}

	fragments := make([]model.TextFragment, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		r := box.Box
		fragments = append(fragments, model.TextFragment{
			Text:       text,
			Box:        model.RectPolygon(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy())),
			Confidence: box.Confidence / 100,
		})
	}
	return fragments, nil
}

// Close releases the Tesseract client
func (e *TesseractEngine) Close() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
