package trail

import "github.com/hajimehoshi/ebiten/v2"

// renderer draws the visible part of a pool back to front. Sprites are sorted
// by ZIndex; equal z-indices keep pool order, so later slots paint on top.
type renderer struct {
	order   []*Sprite
	sortBuf []*Sprite
	op      ebiten.DrawImageOptions
}

// collect gathers the visible sprites of pool into r.order.
func (r *renderer) collect(pool []*Sprite) {
	r.order = r.order[:0]
	for _, sp := range pool {
		if sp.Visible() {
			r.order = append(r.order, sp)
		}
	}
}

// sort is a bottom-up stable merge sort on ZIndex, reusing sortBuf between
// frames so steady-state drawing does not allocate.
func (r *renderer) sort() {
	n := len(r.order)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]*Sprite, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a := r.order
	b := r.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(r.order, r.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []*Sprite, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if src[i].ZIndex <= src[j].ZIndex {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}

// draw submits r.order to dst.
func (r *renderer) draw(dst *ebiten.Image) {
	for _, sp := range r.order {
		r.op = ebiten.DrawImageOptions{}
		r.op.GeoM = sp.geoM()
		r.op.ColorScale.ScaleAlpha(float32(clamp01(sp.Alpha)))
		r.op.Filter = ebiten.FilterLinear
		dst.DrawImage(sp.Image, &r.op)
	}
}
