// Package preprocess turns a captured tooltip bitmap into OCR-friendly variants.
package preprocess

import (
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"
)

// Variant names
const (
	PassBinary   = "binary"   // Otsu threshold, light text on dark background
	PassInverted = "inverted" // inverse Otsu threshold
	PassGray     = "gray"     // grayscale fallback when thresholding is impossible
	PassRaw      = "raw"      // the capture as-is
)

// Variant is one preprocessed rendition of the capture
type Variant struct {
	Name  string
	Image image.Image
	Scale float64 // Image size divided by capture size
}

// Preprocessor produces thresholded variants of a capture
type Preprocessor struct {
	passes    []string
	minHeight int
}

// New creates a preprocessor. minHeight upscales captures shorter than it;
// zero disables upscaling.
func New(passes []string, minHeight int) *Preprocessor {
	if len(passes) == 0 {
		passes = []string{PassBinary, PassInverted, PassRaw}
	}
	return &Preprocessor{passes: passes, minHeight: minHeight}
}

// Process converts an image into the configured variants. It never fails because
// of the pixel layout: anything it cannot threshold is passed through.
func (p *Preprocessor) Process(img image.Image) ([]Variant, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("empty capture")
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		slog.Debug("cannot convert capture to mat, passing through", "error", err)
		return []Variant{{Name: PassRaw, Image: img, Scale: 1}}, nil
	}
	defer mat.Close()

	return p.ProcessMat(mat, img)
}

// ProcessMat runs the variants on an already decoded mat. raw is returned for the
// raw pass; when nil the mat itself is converted back to an image.
func (p *Preprocessor) ProcessMat(mat gocv.Mat, raw image.Image) ([]Variant, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty capture")
	}

	scale := 1.0
	scaled := mat.Clone()
	defer scaled.Close()
	if p.minHeight > 0 && mat.Rows() < p.minHeight {
		scale = float64(p.minHeight) / float64(mat.Rows())
		gocv.Resize(mat, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	}

	gray, ok := toGray(scaled)
	defer gray.Close()

	var variants []Variant
	for _, pass := range p.passes {
		switch pass {
		case PassBinary, PassInverted:
			if !ok || gray.Type() != gocv.MatTypeCV8UC1 {
				variants = appendGray(variants, gray, scale)
				continue
			}
			typ := gocv.ThresholdBinary
			if pass == PassInverted {
				typ = gocv.ThresholdBinaryInv
			}
			bin := gocv.NewMat()
			gocv.Threshold(gray, &bin, 0, 255, typ|gocv.ThresholdOtsu)
			if v, err := toVariant(pass, bin, scale); err == nil {
				variants = append(variants, v)
			} else {
				slog.Debug("threshold pass unusable", "pass", pass, "error", err)
				variants = appendGray(variants, gray, scale)
			}
			bin.Close()
		case PassGray:
			variants = appendGray(variants, gray, scale)
		case PassRaw:
			if raw != nil {
				variants = append(variants, Variant{Name: PassRaw, Image: raw, Scale: 1})
				continue
			}
			if v, err := toVariant(PassRaw, mat, 1); err == nil {
				variants = append(variants, v)
			}
		default:
			slog.Warn("unknown preprocessing pass", "pass", pass)
		}
	}

	if len(variants) == 0 {
		return nil, fmt.Errorf("no usable variant")
	}
	return variants, nil
}

// toGray converts by channel count. The second result is false when the input
// could not be converted and was cloned unchanged.
func toGray(src gocv.Mat) (gocv.Mat, bool) {
	gray := gocv.NewMat()
	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		src.CopyTo(&gray)
		return gray, false
	}
	return gray, true
}

// appendGray adds the grayscale pass-through once
func appendGray(variants []Variant, gray gocv.Mat, scale float64) []Variant {
	for _, v := range variants {
		if v.Name == PassGray {
			return variants
		}
	}
	v, err := toVariant(PassGray, gray, scale)
	if err != nil {
		return variants
	}
	return append(variants, v)
}

func toVariant(name string, m gocv.Mat, scale float64) (Variant, error) {
	img, err := m.ToImage()
	if err != nil {
		return Variant{}, err
	}
	return Variant{Name: name, Image: img, Scale: scale}, nil
}
