package vision

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"leaf-counter/internal/domain/entity"
)

var regularFont *truetype.Font

func init() {
	var err error
	regularFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

var outlineColor = color.RGBA{A: 0xff}

// Annotator рисует строки итогов поверх изображения.
type Annotator struct {
	lines   []AnnotationLine
	size    float64
	outline int
	noun    string
}

// NewAnnotator создаёт рисовальщик подписей по параметрам компоновщика.
func NewAnnotator(opts Options) *Annotator {
	return &Annotator{
		lines:   opts.Annotations,
		size:    opts.FontSize,
		outline: opts.Outline,
		noun:    opts.Noun,
	}
}

// Texts возвращает строки подписи для результата.
func (a *Annotator) Texts(count, totalPixels, width, height int) []string {
	return []string{
		fmt.Sprintf("%s Count: %d", a.noun, count),
		fmt.Sprintf("%s Pixels: %d", a.noun, totalPixels),
		fmt.Sprintf("Image Size: %dx%d", width, height),
	}
}

// newFace создаёт face на каждый вызов: truetype.Face кэширует глифы и не потокобезопасен.
func (a *Annotator) newFace() font.Face {
	return truetype.NewFace(regularFont, &truetype.Options{Size: a.size, Hinting: font.HintingFull})
}

// Annotate возвращает копию изображения с подписями. Пиксели вне Regions не меняются.
func (a *Annotator) Annotate(img *entity.Image, texts []string) *entity.Image {
	rgba := img.ToRGBA()
	dc := gg.NewContextForRGBA(rgba)
	dc.SetFontFace(a.newFace())

	for i, line := range a.lines {
		if i >= len(texts) {
			break
		}
		x, y := float64(line.Position.X), float64(line.Position.Y)

		// Обводка держит контраст на любом фоне, в том числе на зелёной подсветке.
		dc.SetColor(outlineColor)
		for dy := -a.outline; dy <= a.outline; dy++ {
			for dx := -a.outline; dx <= a.outline; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				dc.DrawString(texts[i], x+float64(dx), y+float64(dy))
			}
		}

		dc.SetColor(line.Color)
		dc.DrawString(texts[i], x, y)
	}

	return entity.ImageFromStd(rgba)
}

// Regions возвращает прямоугольники, которые может затронуть каждая строка подписи.
func (a *Annotator) Regions(texts []string, bounds image.Rectangle) []image.Rectangle {
	face := a.newFace()
	regions := make([]image.Rectangle, 0, len(texts))
	for i, line := range a.lines {
		if i >= len(texts) {
			break
		}
		b, _ := font.BoundString(face, texts[i])
		r := image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
		// +2 на сглаживание и округление прямоугольников глифов.
		r = r.Add(line.Position).Inset(-(a.outline + 2))
		regions = append(regions, r.Intersect(bounds))
	}
	return regions
}
