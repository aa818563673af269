package ocr_test

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/mobile-next/adbocr/ocr"
	"github.com/mobile-next/adbocr/ocr/ocrtest"
	"github.com/mobile-next/adbocr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngCapture() *types.ScreenCapture {
	return &types.ScreenCapture{
		Width:   100,
		Height:  50,
		Encoded: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	}
}

func TestNormalize(t *testing.T) {
	center := image.Pt(40, 41)

	tests := []struct {
		name string
		in   ocr.Detection
		want types.TextHit
		ok   bool
	}{
		{
			name: "center wins",
			in:   ocr.Detection{Text: "OK", Center: &center, Box: image.Rect(0, 0, 10, 10), Confidence: 0.9},
			want: types.TextHit{Text: "OK", X: 40, Y: 41, Width: 10, Height: 10, Confidence: 0.9},
			ok:   true,
		},
		{
			name: "polygon vertex mean",
			in: ocr.Detection{Text: "Settings", Polygon: []image.Point{
				{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 110, Y: 60}, {X: 10, Y: 60},
			}},
			want: types.TextHit{Text: "Settings", X: 60, Y: 40, Width: 100, Height: 40},
			ok:   true,
		},
		{
			name: "box center",
			in:   ocr.Detection{Text: " Wi-Fi \n", Box: image.Rect(100, 200, 205, 230)},
			want: types.TextHit{Text: "Wi-Fi", X: 153, Y: 215, Width: 105, Height: 30},
			ok:   true,
		},
		{
			name: "blank text",
			in:   ocr.Detection{Text: "  ", Box: image.Rect(0, 0, 10, 10)},
			ok:   false,
		},
		{
			name: "no geometry",
			in:   ocr.Detection{Text: "floating"},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ocr.Normalize(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRecognizer_KeepsEngineOrder(t *testing.T) {
	engine := &ocrtest.Engine{Detections: []ocr.Detection{
		{Text: "second line", Box: image.Rect(0, 30, 20, 40)},
		{Text: "", Box: image.Rect(0, 0, 1, 1)},
		{Text: "first line", Box: image.Rect(0, 0, 20, 10)},
	}}

	hits, err := ocr.NewRecognizer(engine).Recognize(context.Background(), pngCapture())
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "second line", hits[0].Text)
	assert.Equal(t, "first line", hits[1].Text)
}

func TestRecognizer_NoTextIsEmptyNotNil(t *testing.T) {
	hits, err := ocr.NewRecognizer(&ocrtest.Engine{}).Recognize(context.Background(), pngCapture())
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestRecognizer_EngineFailure(t *testing.T) {
	engine := &ocrtest.Engine{Err: errors.New("tessdata not found")}

	hits, err := ocr.NewRecognizer(engine).Recognize(context.Background(), pngCapture())
	assert.Nil(t, hits)
	assert.ErrorIs(t, err, types.ErrRecognition)
	assert.Contains(t, err.Error(), "tessdata not found")
}

func TestRecognizer_NilCapture(t *testing.T) {
	_, err := ocr.NewRecognizer(&ocrtest.Engine{}).Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrRecognition)
}

func TestRecognizer_PassesOptions(t *testing.T) {
	engine := &ocrtest.Engine{}
	recognizer := ocr.NewRecognizer(engine,
		ocr.WithLanguages("eng", "chi_sim"),
		ocr.WithLevel(ocr.LevelWord),
		ocr.WithTesseractPSM(11),
		ocr.WithTesseractWhitelist("0123456789"),
	)

	_, err := recognizer.Recognize(context.Background(), pngCapture(), ocr.WithDPI(320))
	require.NoError(t, err)

	inputs := engine.Inputs()
	require.Len(t, inputs, 1)
	in := inputs[0]
	assert.Equal(t, ocr.ImageFormatPNG, in.Format)
	assert.Equal(t, []string{"eng", "chi_sim"}, in.Languages)
	assert.Equal(t, ocr.LevelWord, in.Level)
	assert.Equal(t, 320, in.DPI)
	assert.Equal(t, "11", in.Metadata["tessedit_pageseg_mode"])
	assert.Equal(t, "0123456789", in.Metadata["tessedit_char_whitelist"])
}

func TestRecognizer_EncodesDecodedOnlyCapture(t *testing.T) {
	engine := &ocrtest.Engine{}
	capture := &types.ScreenCapture{
		Width:  4,
		Height: 4,
		Image:  image.NewRGBA(image.Rect(0, 0, 4, 4)),
	}

	_, err := ocr.NewRecognizer(engine).Recognize(context.Background(), capture)
	require.NoError(t, err)

	in := engine.Inputs()[0]
	assert.Equal(t, ocr.ImageFormatPNG, in.Format)
	assert.Equal(t, ocr.LevelLine, in.Level)
	assert.NotEmpty(t, in.Image)
}

func TestDefaultEngine(t *testing.T) {
	previous := ocr.DefaultEngine()
	t.Cleanup(func() { ocr.SetDefaultEngine(previous) })

	engine := &ocrtest.Engine{}
	ocr.SetDefaultEngine(engine)
	assert.Same(t, engine, ocr.NewRecognizer(nil).Engine())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want ocr.Level
		ok   bool
	}{
		{"", ocr.LevelLine, true},
		{"line", ocr.LevelLine, true},
		{"WORD", ocr.LevelWord, true},
		{"symbol", "", false},
	}

	for _, tt := range tests {
		got, ok := ocr.ParseLevel(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
