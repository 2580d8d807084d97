package engine

// Affine is a 2D affine transform in row-major order:
//
//	| A C TX |
//	| B D TY |
//
// It matches the layout ebiten's GeoM expects.
type Affine struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Translation returns a transform that moves by (x, y).
func Translation(x, y float64) Affine {
	return Affine{A: 1, D: 1, TX: x, TY: y}
}

// Scaling returns a uniform scale about the origin.
func Scaling(s float64) Affine {
	return Affine{A: s, D: s}
}

// Mul returns m*n: n is applied first, then m.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A:  m.A*n.A + m.C*n.B,
		B:  m.B*n.A + m.D*n.B,
		C:  m.A*n.C + m.C*n.D,
		D:  m.B*n.C + m.D*n.D,
		TX: m.A*n.TX + m.C*n.TY + m.TX,
		TY: m.B*n.TX + m.D*n.TY + m.TY,
	}
}

// Apply transforms a point.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.TX, m.B*x + m.D*y + m.TY
}

// Invert returns the inverse transform. A singular matrix returns false.
func (m Affine) Invert() (Affine, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Affine{}, false
	}
	inv := Affine{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
	}
	inv.TX = -(inv.A*m.TX + inv.C*m.TY)
	inv.TY = -(inv.B*m.TX + inv.D*m.TY)
	return inv, true
}

// worldCentre is the pixel the overview zooms towards.
var worldCentre = Point{X: 800, Y: 600}

func zoomScale(zoom int) float64 {
	return 1 + float64(zoom)/25
}

// MapTransform maps screen pixels to world pixels for the given level and
// zoom. As zoom grows the view slides towards the centre of the world and
// scales out so every level fits on screen at ProgressMax.
func MapTransform(id LevelID, zoom int) Affine {
	c, ok := Centre(id)
	if !ok {
		return Identity()
	}
	cx, cy := float64(c.X), float64(c.Y)

	var m Affine
	if zoom > 0 {
		cx += (float64(worldCentre.X) - cx) * float64(zoom) / 100
		cy += (float64(worldCentre.Y) - cy) * float64(zoom) / 100
		m = Translation(cx, cy).Mul(Scaling(zoomScale(zoom)))
	} else {
		m = Translation(cx, cy)
	}
	return m.Mul(Translation(-ScreenWidth/2, -ScreenHeight/2))
}

// LevelRect is the on-screen rectangle of a level under the overview zoom,
// drawn as the selection highlight.
func LevelRect(id LevelID, zoom int) Rect {
	c, ok := Centre(id)
	if !ok {
		return Rect{}
	}
	s := zoomScale(zoom)

	cx := float64(c.X - ScreenWidth/2)
	cy := float64(c.Y - ScreenHeight/2)
	cx -= cx * (1 - float64(zoom)/100)
	cy -= cy * (1 - float64(zoom)/100)

	return Rect{
		X: int(cx/s) + 1,
		Y: int(cy/s) + 1,
		W: int(ScreenWidth/s) - 2,
		H: int(ScreenHeight/s) - 2,
	}
}

// Alpha is the opacity of the level highlight at the given zoom.
func Alpha(zoom int) uint8 {
	if zoom > ProgressMax {
		zoom = ProgressMax
	}
	if zoom < 0 {
		zoom = 0
	}
	return uint8(255 - float64(zoom)*1.5)
}
