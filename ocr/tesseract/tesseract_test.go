package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"strings"
	"testing"

	"github.com/mobile-next/adbocr/ocr"
	"github.com/mobile-next/adbocr/types"
	"github.com/mobile-next/adbocr/utils"
	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

// renderCapture draws lines of text in the basic 7x13 font, scaled up so
// Tesseract can read it.
func renderCapture(t *testing.T, lines ...string) *types.ScreenCapture {
	t.Helper()

	small := image.NewRGBA(image.Rect(0, 0, 160, 30*len(lines)+10))
	draw.Draw(small, small.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	for i, line := range lines {
		d := &font.Drawer{
			Dst:  small,
			Src:  image.Black,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(10, 25+30*i),
		}
		d.DrawString(line)
	}

	const factor = 3
	big := image.NewRGBA(image.Rect(0, 0, small.Bounds().Dx()*factor, small.Bounds().Dy()*factor))
	for y := 0; y < big.Bounds().Dy(); y++ {
		for x := 0; x < big.Bounds().Dx(); x++ {
			big.Set(x, y, small.At(x/factor, y/factor))
		}
	}

	data, err := utils.EncodeImage(big, "png", 0)
	require.NoError(t, err)

	return &types.ScreenCapture{
		Width:   big.Bounds().Dx(),
		Height:  big.Bounds().Dy(),
		Image:   big,
		Encoded: data,
	}
}

func TestEngine_RecognizesLines(t *testing.T) {
	ensureTesseractAvailable(t)

	capture := renderCapture(t, "Settings", "Display")
	hits, err := ocr.NewRecognizer(NewEngine(), ocr.WithLanguages("eng")).Recognize(context.Background(), capture)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	var found bool
	for _, hit := range hits {
		if strings.Contains(strings.ToLower(hit.Text), "settings") {
			found = true
			assert.Greater(t, hit.X, 0)
			assert.Greater(t, hit.Y, 0)
			assert.Less(t, hit.X, capture.Width)
			assert.Less(t, hit.Y, capture.Height)
		}
	}
	assert.True(t, found, "expected 'Settings' in %+v", hits)
}

func TestEngine_IsDefault(t *testing.T) {
	assert.Equal(t, "tesseract", ocr.DefaultEngine().Name())
}

func TestIteratorLevel(t *testing.T) {
	assert.Equal(t, gosseract.RIL_TEXTLINE, iteratorLevel(ocr.LevelLine))
	assert.Equal(t, gosseract.RIL_TEXTLINE, iteratorLevel(""))
	assert.Equal(t, gosseract.RIL_WORD, iteratorLevel(ocr.LevelWord))
}

func TestEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Detect(ctx, ocr.Input{})
	assert.ErrorIs(t, err, context.Canceled)
}
