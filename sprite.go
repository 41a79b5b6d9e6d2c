package trail

import "github.com/hajimehoshi/ebiten/v2"

// Sprite is one pooled trail image. X and Y place the top-left corner; Scale
// is applied around the sprite's center. Sprites start fully transparent and
// only become visible once a timeline animates them in.
type Sprite struct {
	Name   string
	Image  *ebiten.Image
	X, Y   float64
	Scale  float64
	Alpha  float64
	ZIndex int

	// Cached at construction. Layout is assumed static.
	width, height float64

	// Running timeline, or NoHandle.
	anim Handle
}

// NewSprite creates a hidden sprite for img. The sprite's bounds are taken from
// the image; a nil image yields an empty sprite that still occupies a pool slot.
func NewSprite(name string, img *ebiten.Image) *Sprite {
	s := &Sprite{Name: name, Image: img}
	if img != nil {
		b := img.Bounds()
		s.width = float64(b.Dx())
		s.height = float64(b.Dy())
	}
	return s
}

// NewSizedSprite creates a hidden sprite with explicit bounds. The image may
// be nil, in which case nothing is drawn for it.
func NewSizedSprite(name string, img *ebiten.Image, width, height float64) *Sprite {
	return &Sprite{Name: name, Image: img, width: width, height: height}
}

// Size returns the cached width and height.
func (s *Sprite) Size() (float64, float64) {
	return s.width, s.height
}

// Bounds returns the unscaled on-screen rectangle of the sprite.
func (s *Sprite) Bounds() Rect {
	return Rect{X: s.X, Y: s.Y, Width: s.width, Height: s.height}
}

// Animation returns the handle of the sprite's running timeline, or NoHandle.
func (s *Sprite) Animation() Handle {
	return s.anim
}

// Visible reports whether the sprite would produce any pixels.
func (s *Sprite) Visible() bool {
	return s.Image != nil && s.Alpha > 0 && s.Scale > 0
}

// geoM builds the draw transform: scale about the center, then translate.
func (s *Sprite) geoM() ebiten.GeoM {
	var m ebiten.GeoM
	hw, hh := s.width/2, s.height/2
	m.Translate(-hw, -hh)
	m.Scale(s.Scale, s.Scale)
	m.Translate(s.X+hw, s.Y+hh)
	return m
}
