// Package ogimage renders the 1200x630 Open Graph cards shared by social
// previews.
package ogimage

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"unicode"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"agentskill/models"
	"agentskill/textfmt"
)

// Card dimensions.
const (
	Width  = 1200
	Height = 630
)

const (
	margin         = 72
	descriptionMax = 160
	fallbackDesc   = "Claude Skill on GitHub"
)

var (
	background = color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}
	accent     = color.RGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff}
	foreground = color.RGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff}
	muted      = color.RGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
)

// Card is the text content of one image. The bitmap face only covers ASCII,
// so every field is reduced to printable ASCII before drawing.
type Card struct {
	Eyebrow     string
	Title       string
	Description string
	Stats       []string
}

// DefaultCard is the site-wide card.
func DefaultCard() Card {
	return Card{
		Eyebrow:     "agentskill.work",
		Title:       "AgentSkill Hub",
		Description: "Discover trending Claude Skill projects on GitHub with curated search and real-time updates.",
		Stats:       []string{"Claude Skill directory", "zh / en"},
	}
}

// SkillCard describes one skill. The English description is preferred since
// it is the one the face can draw.
func SkillCard(s models.Skill) Card {
	desc := textfmt.FirstNonEmpty(s.Description, s.SummaryEn, s.DescriptionZh)
	stats := []string{
		"Stars " + textfmt.Compact(s.Stars),
		"Forks " + textfmt.Compact(s.Forks),
	}
	if s.Language != "" {
		stats = append(stats, s.Language)
	}
	return Card{
		Eyebrow:     "agentskill.work / Claude Skill",
		Title:       s.FullName,
		Description: desc,
		Stats:       stats,
	}
}

// ASCII drops runes the bitmap face cannot draw and compacts what is left.
func ASCII(s string) string {
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || (!unicode.IsPrint(r) && !unicode.IsSpace(r)) {
			return -1
		}
		return r
	}, s)
	return textfmt.CompactWhitespace(s)
}

// Render draws c as a PNG.
func Render(w io.Writer, c Card) error {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, Width, 12), image.NewUniform(accent), image.Point{}, draw.Src)

	y := margin + 20
	y = drawLine(img, ASCII(c.Eyebrow), margin, y, 3, accent)
	y += 28

	title := textfmt.Truncate(ASCII(c.Title), maxColumns(6))
	y = drawLine(img, title, margin, y, 6, foreground)
	y += 36

	desc := ASCII(c.Description)
	if desc == "" {
		desc = fallbackDesc
	}
	for _, line := range wrap(textfmt.Truncate(desc, descriptionMax), maxColumns(3), 3) {
		y = drawLine(img, line, margin, y, 3, muted)
		y += 14
	}

	stats := ASCII(strings.Join(c.Stats, "   |   "))
	drawLine(img, stats, margin, Height-margin-13*3, 3, foreground)

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode og image: %w", err)
	}
	return nil
}

// maxColumns is how many glyphs fit between the margins at scale.
func maxColumns(scale int) int {
	return (Width - 2*margin) / (basicfont.Face7x13.Advance * scale)
}

// drawLine renders text with the 7x13 face into a scratch image and scales it
// up with nearest-neighbour sampling, so glyphs stay crisp. It returns the y
// coordinate below the line.
func drawLine(dst *image.RGBA, text string, x, y, scale int, c color.Color) int {
	face := basicfont.Face7x13
	lineHeight := face.Height
	if text == "" {
		return y + lineHeight*scale
	}

	width := font.MeasureString(face, text).Ceil()
	scratch := image.NewRGBA(image.Rect(0, 0, width, lineHeight))
	d := &font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	target := image.Rect(x, y, x+width*scale, y+lineHeight*scale)
	draw.NearestNeighbor.Scale(dst, target, scratch, scratch.Bounds(), draw.Over, nil)
	return target.Max.Y
}

// wrap breaks s on spaces into at most maxLines lines of width columns.
func wrap(s string, width, maxLines int) []string {
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(s) {
		if len(word) > width {
			word = word[:width]
		}
		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case current.Len()+1+len(word) <= width:
			current.WriteByte(' ')
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		if len(last)+len(textfmt.Ellipsis) > width {
			last = last[:width-len(textfmt.Ellipsis)]
		}
		lines[maxLines-1] = last + textfmt.Ellipsis
	}
	return lines
}
