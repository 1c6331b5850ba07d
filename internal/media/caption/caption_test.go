package caption

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/image/font/basicfont"
)

func newTestRenderer() *Renderer {
	// The built-in face keeps the test independent of installed fonts.
	return &Renderer{title: basicfont.Face7x13, body: basicfont.Face7x13}
}

func TestRender_CanvasAndBackground(t *testing.T) {
	img := newTestRenderer().Render("Intro to Maps\nMaps associate keys with values.")

	bounds := img.Bounds()
	assert.Equal(t, canvasWidth, bounds.Dx())
	assert.Equal(t, canvasHeight, bounds.Dy())

	// Corners are untouched background.
	assert.Equal(t, bgColor, img.RGBAAt(0, 0))
	assert.Equal(t, bgColor, img.RGBAAt(canvasWidth-1, canvasHeight-1))
}

func TestRender_Deterministic(t *testing.T) {
	r := newTestRenderer()
	text := "Recursion\nA function that calls itself until a base case stops it."

	first := r.Render(text)
	second := r.Render(text)
	assert.Equal(t, first.Pix, second.Pix)
}

func TestRender_AccentBar(t *testing.T) {
	img := newTestRenderer().Render("Title only")

	// The accent bar spans the middle 60% of the width; sample a pixel
	// at dead center horizontally by scanning the column for the color.
	found := false
	for y := 0; y < canvasHeight; y++ {
		if img.RGBAAt(canvasWidth/2, y) == accentColor {
			found = true
			break
		}
	}
	assert.True(t, found, "accent bar not drawn")

	// Nothing accent-colored in the outer 20% margins.
	for y := 0; y < canvasHeight; y++ {
		assert.NotEqual(t, accentColor, img.RGBAAt(canvasWidth/10, y))
	}
}

func TestSplitCaption(t *testing.T) {
	title, body := splitCaption("First line\nsecond\nthird")
	assert.Equal(t, "First line", title)
	assert.Equal(t, "second third", body)

	title, body = splitCaption("")
	assert.Equal(t, "Lesson", title)
	assert.Empty(t, body)
}

func TestSplitCaption_Bounds(t *testing.T) {
	title, _ := splitCaption(strings.Repeat("a", 200) + "\nbody")
	assert.Len(t, []rune(title), maxTitleChars)
}

func TestWrap_GreedyByPixelWidth(t *testing.T) {
	face := basicfont.Face7x13

	lines := wrap(face, "one two three four five six seven eight", 100)
	require.NotEmpty(t, lines)

	for _, line := range lines {
		w := measure(t, line)
		assert.LessOrEqual(t, w, 100, "line %q exceeds max width", line)
	}

	// Rejoining loses no words.
	rejoined := ""
	for i, line := range lines {
		if i > 0 {
			rejoined += " "
		}
		rejoined += line
	}
	assert.Equal(t, "one two three four five six seven eight", rejoined)
}

func TestWrap_OversizedWordGetsOwnLine(t *testing.T) {
	face := basicfont.Face7x13

	lines := wrap(face, "ok supercalifragilisticexpialidocious ok", 70)
	assert.Contains(t, lines, "supercalifragilisticexpialidocious")
}

func measure(t *testing.T, line string) int {
	t.Helper()
	// basicfont is 7px advance per glyph
	return len(line) * 7
}
