// Package caption rasterizes lesson text into a fixed-layout title card.
// Rendering is deterministic: identical input and font produce an
// identical image.
package caption

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Canvas layout constants. The first input line becomes the title,
// centered at a quarter height with an accent bar under it; the rest is
// word-wrapped body text below.
const (
	canvasWidth  = 1280
	canvasHeight = 720

	titleFontSize = 64
	bodyFontSize  = 38

	maxTitleChars = 90
	maxBodyChars  = 500

	// Body lines wrap at this fraction of the canvas width
	bodyWidthFraction = 0.7

	underlineGap    = 12
	underlineHeight = 6
	bodyGap         = 40
	lineSpacing     = 6
)

var (
	bgColor     = color.RGBA{R: 18, G: 18, B: 22, A: 255}
	fgColor     = color.RGBA{R: 240, G: 240, B: 245, A: 255}
	accentColor = color.RGBA{R: 139, G: 92, B: 246, A: 255}
)

// Renderer rasterizes caption text onto the title card canvas
type Renderer struct {
	title font.Face
	body  font.Face
}

// NewRenderer loads the TTF at fontPath for the title and body faces.
// When the font is missing or unreadable it falls back to the built-in
// bitmap face instead of failing.
func NewRenderer(fontPath string) *Renderer {
	title, body, err := loadFaces(fontPath)
	if err != nil {
		slog.Warn("caption font unavailable, using built-in face",
			"path", fontPath,
			"error", err,
		)
		return &Renderer{title: basicfont.Face7x13, body: basicfont.Face7x13}
	}
	return &Renderer{title: title, body: body}
}

func loadFaces(fontPath string) (font.Face, font.Face, error) {
	if fontPath == "" {
		fontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	}

	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	title, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: titleFontSize, DPI: 72})
	if err != nil {
		return nil, nil, err
	}
	body, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: bodyFontSize, DPI: 72})
	if err != nil {
		return nil, nil, err
	}
	return title, body, nil
}

// Render draws the title card for text and returns the image. The first
// line is the title (truncated); remaining lines are joined into the
// body (bounded and word-wrapped).
func (r *Renderer) Render(text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(bgColor), image.Point{}, draw.Src)

	title, body := splitCaption(text)

	titleMetrics := r.title.Metrics()
	titleHeight := (titleMetrics.Ascent + titleMetrics.Descent).Ceil()
	titleWidth := font.MeasureString(r.title, title).Ceil()

	titleX := (canvasWidth - titleWidth) / 2
	titleY := canvasHeight/4 - titleHeight/2

	drawString(img, r.title, title, titleX, titleY+titleMetrics.Ascent.Ceil())

	underlineY := titleY + titleHeight + underlineGap
	underline := image.Rect(canvasWidth/5, underlineY, canvasWidth*4/5, underlineY+underlineHeight)
	draw.Draw(img, underline, image.NewUniform(accentColor), image.Point{}, draw.Src)

	if body == "" {
		return img
	}

	bodyMetrics := r.body.Metrics()
	lineHeight := (bodyMetrics.Ascent + bodyMetrics.Descent).Ceil() + lineSpacing
	maxBodyWidth := int(float64(canvasWidth) * bodyWidthFraction)

	y := underlineY + bodyGap + bodyMetrics.Ascent.Ceil()
	for _, line := range wrap(r.body, body, maxBodyWidth) {
		lineWidth := font.MeasureString(r.body, line).Ceil()
		drawString(img, r.body, line, (canvasWidth-lineWidth)/2, y)
		y += lineHeight
	}

	return img
}

// splitCaption separates text into the truncated title line and the
// joined, bounded body.
func splitCaption(text string) (title, body string) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	title = "Lesson"
	if len(lines) > 0 && lines[0] != "" {
		title = truncate(lines[0], maxTitleChars)
	}
	if len(lines) > 1 {
		body = truncate(strings.Join(lines[1:], " "), maxBodyChars)
	}
	return title, body
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// wrap packs words greedily into lines, measuring each candidate line's
// rendered pixel width. A single word wider than maxWidth gets its own
// line rather than being broken.
func wrap(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	var lines []string
	var cur []string

	for _, w := range words {
		candidate := strings.Join(append(cur, w), " ")
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			cur = append(cur, w)
			continue
		}
		if len(cur) > 0 {
			lines = append(lines, strings.Join(cur, " "))
		}
		cur = []string{w}
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}

// drawString renders s with its baseline at (x, y)
func drawString(dst *image.RGBA, face font.Face, s string, x, y int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fgColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
