package imagery

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"repair-guide-api/internal/application/prompt"
)

const (
	placeholderWidth  = 800
	placeholderHeight = 480

	DefaultWordmark = "Artifex"
	DefaultCaption  = "Image unavailable"
)

// overlayColor rgba(255,255,255,0.15)
var overlayColor = color.NRGBA{R: 255, G: 255, B: 255, A: 38}

// blankPNG 1x1 透明 PNG，仅在编码失败时使用
const blankPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// PlaceholderProvider 合成占位图，链路的最后一环
type PlaceholderProvider struct {
	wordmark string
	caption  string
}

// NewPlaceholderProvider 创建占位图 provider，空字符串使用默认文案
func NewPlaceholderProvider(wordmark, caption string) *PlaceholderProvider {
	if wordmark == "" {
		wordmark = DefaultWordmark
	}
	if caption == "" {
		caption = DefaultCaption
	}
	return &PlaceholderProvider{wordmark: wordmark, caption: caption}
}

func (p *PlaceholderProvider) Name() string { return "placeholder" }

func (p *PlaceholderProvider) Image(_ context.Context, req StepImageRequest) (string, error) {
	return p.Render(req.Index)
}

// Render 以 seed 生成确定性的 PNG data URI
func (p *PlaceholderProvider) Render(seed int) (string, error) {
	img := renderPlaceholder(seed, p.wordmark, p.caption)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return prompt.EncodeDataURI("image/png", buf.Bytes()), nil
}

// RenderPlaceholder 使用默认文案生成占位图，编码失败时返回 1x1 透明图
func RenderPlaceholder(seed int) string {
	uri, err := NewPlaceholderProvider("", "").Render(seed)
	if err != nil {
		return blankPNG
	}
	return uri
}

// placeholderHue (seed × 57) mod 360，负数取正
func placeholderHue(seed int) int {
	h := (seed * 57) % 360
	if h < 0 {
		h += 360
	}
	return h
}

func renderPlaceholder(seed int, wordmark, caption string) *image.RGBA {
	hue := placeholderHue(seed)
	from := hslColor(float64(hue), 0.70, 0.18)
	to := hslColor(float64((hue+40)%360), 0.85, 0.32)

	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))

	// 对角线渐变：沿 (0,0)→(w,h) 方向投影
	const dx, dy = float64(placeholderWidth), float64(placeholderHeight)
	norm := dx*dx + dy*dy
	for y := 0; y < placeholderHeight; y++ {
		for x := 0; x < placeholderWidth; x++ {
			t := (float64(x)*dx + float64(y)*dy) / norm
			img.SetRGBA(x, y, lerpColor(from, to, t))
		}
	}

	drawText(img, wordmark, 36, 96, 4)
	drawText(img, caption, 36, 146, 2)
	return img
}

// drawText 用 basicfont 绘制后按整数倍放大，baseline 为基线 y 坐标
func drawText(dst *image.RGBA, text string, x, baseline, scale int) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	height := metrics.Height.Ceil()
	width := font.MeasureString(face, text).Ceil()

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(text)

	scaled := image.NewAlpha(image.Rect(0, 0, width*scale, height*scale))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)

	top := baseline - ascent*scale
	r := image.Rect(x, top, x+width*scale, top+height*scale)
	draw.DrawMask(dst, r, image.NewUniform(overlayColor), image.Point{}, scaled, image.Point{}, draw.Over)
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	mix := func(p, q uint8) uint8 {
		return uint8(math.Round(float64(p) + (float64(q)-float64(p))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// hslColor h ∈ [0,360)，s/l ∈ [0,1]
func hslColor(h, s, l float64) color.RGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := l - c/2
	to8 := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}
}
