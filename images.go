package trail

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	_ "golang.org/x/image/webp"
)

// Source is a decoded trail image and the name it was loaded under.
type Source struct {
	Name  string
	Image image.Image
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// LoadImageDir decodes every supported image in dir, sorted by file name.
// That order is the pool's slot order. Images whose longest side exceeds
// maxSide are downscaled; maxSide <= 0 keeps the original size. Files that are
// not images are skipped; a file with an image extension that fails to decode
// is an error.
func LoadImageDir(dir string, maxSide int) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(imageExts, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	sources := make([]Source, 0, len(names))
	for _, name := range names {
		img, err := decodeFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sources = append(sources, Source{Name: name, Image: fitImage(img, maxSide)})
	}
	return sources, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// fitImage downscales img so its longest side is at most maxSide.
func fitImage(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if maxSide <= 0 || longest <= maxSide {
		return img
	}
	scale := float64(maxSide) / float64(longest)
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// placeholderColors are gradient stop pairs for generated cards.
var placeholderColors = [][2]color.RGBA{
	{{0xf2, 0x6b, 0x5b, 0xff}, {0x8e, 0x2d, 0x56, 0xff}},
	{{0xf7, 0xb2, 0x67, 0xff}, {0xd1, 0x5a, 0x2f, 0xff}},
	{{0x5b, 0xc0, 0xbe, 0xff}, {0x3a, 0x50, 0x6b, 0xff}},
	{{0x9b, 0xc5, 0x3d, 0xff}, {0x2e, 0x6f, 0x40, 0xff}},
	{{0x6c, 0x8e, 0xef, 0xff}, {0x37, 0x2f, 0x8c, 0xff}},
	{{0xe0, 0x8d, 0xd8, 0xff}, {0x70, 0x36, 0x8c, 0xff}},
}

// Placeholders renders n numbered gradient cards of w×h pixels, for running
// the trail without an image directory.
func Placeholders(n, w, h int) ([]Source, error) {
	if n < 0 || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("placeholders: invalid size %dx%d x%d", w, h, n)
	}
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("placeholders: parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(min(w, h)) / 4,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	sources := make([]Source, n)
	for i := range sources {
		stops := placeholderColors[i%len(placeholderColors)]

		dc := gg.NewContext(w, h)
		grad := gg.NewLinearGradient(0, 0, float64(w), float64(h))
		grad.AddColorStop(0, stops[0])
		grad.AddColorStop(1, stops[1])
		dc.SetFillStyle(grad)
		dc.DrawRoundedRectangle(0, 0, float64(w), float64(h), float64(min(w, h))/12)
		dc.Fill()

		dc.SetFontFace(face)
		dc.SetColor(color.White)
		dc.DrawStringAnchored(fmt.Sprintf("%02d", i+1), float64(w)/2, float64(h)/2, 0.5, 0.5)

		sources[i] = Source{Name: fmt.Sprintf("placeholder-%02d", i+1), Image: dc.Image()}
	}
	return sources, nil
}

// NewSprites uploads sources to the GPU and wraps each in a hidden Sprite, in
// order.
func NewSprites(sources []Source) []*Sprite {
	sprites := make([]*Sprite, len(sources))
	for i, src := range sources {
		sprites[i] = NewSprite(src.Name, ebiten.NewImageFromImage(src.Image))
	}
	return sprites
}
