package ocr

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/mobile-next/adbocr/types"
	"github.com/mobile-next/adbocr/utils"
)

// Recognizer runs an engine over screen captures and reduces whatever
// geometry it reports to TextHits.
type Recognizer struct {
	engine Engine
	opts   []InputOption
}

// NewRecognizer returns a recognizer over engine, or over DefaultEngine
// when engine is nil. opts apply to every call.
func NewRecognizer(engine Engine, opts ...InputOption) *Recognizer {
	if engine == nil {
		engine = DefaultEngine()
	}
	return &Recognizer{engine: engine, opts: opts}
}

// Engine returns the engine in use.
func (r *Recognizer) Engine() Engine {
	return r.engine
}

// Recognize returns the hits found in capture, in engine order. The slice
// is never nil; finding no text is not an error. extra options apply after
// the recognizer's own.
func (r *Recognizer) Recognize(ctx context.Context, capture *types.ScreenCapture, extra ...InputOption) ([]types.TextHit, error) {
	if capture == nil {
		return nil, fmt.Errorf("%w: no capture to recognize", types.ErrRecognition)
	}

	input, err := buildInput(capture, append(append([]InputOption(nil), r.opts...), extra...))
	if err != nil {
		return nil, err
	}

	detections, err := r.engine.Detect(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrRecognition, r.engine.Name(), err)
	}

	hits := make([]types.TextHit, 0, len(detections))
	for _, d := range detections {
		if hit, ok := Normalize(d); ok {
			hits = append(hits, hit)
		}
	}

	utils.Verbose("%s found %d text region(s), kept %d", r.engine.Name(), len(detections), len(hits))
	return hits, nil
}

func buildInput(capture *types.ScreenCapture, opts []InputOption) (Input, error) {
	data := capture.Encoded
	if len(data) == 0 {
		if capture.Image == nil {
			return Input{}, fmt.Errorf("%w: capture has no image data", types.ErrRecognition)
		}
		encoded, err := utils.EncodeImage(capture.Image, "png", 0)
		if err != nil {
			return Input{}, fmt.Errorf("%w: encode capture: %v", types.ErrRecognition, err)
		}
		data = encoded
	}

	in := Input{
		Image:  data,
		Format: sniffFormat(data),
		Level:  LevelLine,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}

func sniffFormat(data []byte) ImageFormat {
	if len(data) >= 2 && data[0] == 0xff && data[1] == 0xd8 {
		return ImageFormatJPEG
	}
	return ImageFormatPNG
}

// Normalize reduces a detection to a single centroid. The explicit center
// wins, then the mean of the polygon vertices, then the box center. Blank
// text or missing geometry yields false.
func Normalize(d Detection) (types.TextHit, bool) {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return types.TextHit{}, false
	}

	extent := d.Box
	if len(d.Polygon) > 0 {
		extent = polygonBounds(d.Polygon)
	}

	hit := types.TextHit{
		Text:       text,
		Width:      extent.Dx(),
		Height:     extent.Dy(),
		Confidence: d.Confidence,
	}

	switch {
	case d.Center != nil:
		hit.X, hit.Y = d.Center.X, d.Center.Y
	case len(d.Polygon) > 0:
		hit.X, hit.Y = polygonMean(d.Polygon)
	case !d.Box.Empty():
		hit.X = int(math.Round(float64(d.Box.Min.X+d.Box.Max.X) / 2))
		hit.Y = int(math.Round(float64(d.Box.Min.Y+d.Box.Max.Y) / 2))
	default:
		return types.TextHit{}, false
	}

	return hit, true
}

func polygonMean(points []image.Point) (int, int) {
	var sx, sy float64
	for _, p := range points {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(points))
	return int(math.Round(sx / n)), int(math.Round(sy / n))
}

func polygonBounds(points []image.Point) image.Rectangle {
	r := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}
