package imagery

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePlaceholder(t *testing.T, uri string) []byte {
	t.Helper()
	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(uri, prefix))
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	return data
}

func TestRenderPlaceholderIsDeterministic(t *testing.T) {
	a := RenderPlaceholder(3)
	b := RenderPlaceholder(3)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, RenderPlaceholder(4))
}

func TestRenderPlaceholderDimensionsAndGradient(t *testing.T) {
	data := decodePlaceholder(t, RenderPlaceholder(2))

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, placeholderWidth, img.Bounds().Dx())
	assert.Equal(t, placeholderHeight, img.Bounds().Dy())

	hue := placeholderHue(2)
	from := hslColor(float64(hue), 0.70, 0.18)
	to := hslColor(float64((hue+40)%360), 0.85, 0.32)

	assert.Equal(t, color.Color(from), color.RGBAModel.Convert(img.At(0, 0)))
	assert.NotEqual(t, color.Color(from), color.RGBAModel.Convert(img.At(placeholderWidth-1, placeholderHeight-1)))
	assert.NotEqual(t, from, to)
}

func TestPlaceholderHue(t *testing.T) {
	assert.Equal(t, 0, placeholderHue(0))
	assert.Equal(t, 57, placeholderHue(1))
	assert.Equal(t, 96, placeholderHue(8))
	assert.Equal(t, 303, placeholderHue(-1))
}

func TestHSLColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, A: 255}, hslColor(0, 1, 0.5))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, hslColor(120, 1, 0.5))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, hslColor(240, 1, 0.5))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, hslColor(10, 0, 1))
}

func TestPlaceholderProviderUsesStepIndex(t *testing.T) {
	p := NewPlaceholderProvider("", "")
	assert.Equal(t, "placeholder", p.Name())

	uri, err := p.Image(context.Background(), StepImageRequest{Index: 5})
	require.NoError(t, err)
	assert.Equal(t, RenderPlaceholder(5), uri)

	custom, err := NewPlaceholderProvider("Workshop", "No photo").Render(5)
	require.NoError(t, err)
	assert.NotEqual(t, uri, custom)
}
