package stockphoto

import (
	"fmt"
)

// placeholderPalette 代理兜底 SVG 的配色
var placeholderPalette = []string{"#2B4C7E", "#E8642C", "#4A5568", "#D4552A", "#6B6B6B"}

// slot 将任意 index 映射到 [0, n)，负数与其绝对值同位
func slot(index, n int) int {
	// 先取模再取反，math.MinInt 也不会溢出
	r := index % n
	if r < 0 {
		r = -r
	}
	return r
}

// PlaceholderSVG 生成 800x480 的纯色渐变 SVG，颜色由 index 决定
func PlaceholderSVG(index int) []byte {
	color := placeholderPalette[slot(index, len(placeholderPalette))]
	svg := fmt.Sprintf(`<svg width="800" height="480" xmlns="http://www.w3.org/2000/svg">
	<defs>
		<linearGradient id="g%[1]d" x1="0%%" y1="0%%" x2="100%%" y2="100%%">
			<stop offset="0%%" style="stop-color:%[2]s;stop-opacity:1" />
			<stop offset="100%%" style="stop-color:%[2]sdd;stop-opacity:1" />
		</linearGradient>
	</defs>
	<rect width="800" height="480" fill="url(#g%[1]d)"/>
</svg>`, index, color)
	return []byte(svg)
}
