package plan

import (
	"fmt"
	"math"

	"github.com/MobRulesGames/mathgl"
)

type Category int

const (
	CategoryEquipment Category = iota
	CategoryWall
	CategoryComponent
	CategoryRoom
	NumCategories
)

var categoryNames = map[Category]string{
	CategoryEquipment: "equipment",
	CategoryWall:      "wall",
	CategoryComponent: "component",
	CategoryRoom:      "room",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func (c Category) MarshalJSON() ([]byte, error) {
	name, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(`"` + name + `"`), nil
}

func (c *Category) UnmarshalJSON(data []byte) error {
	name := string(data)
	if len(name) >= 2 && name[0] == '"' {
		name = name[1 : len(name)-1]
	}
	for cat, catName := range categoryNames {
		if catName == name {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", name)
}

type Color struct {
	R, G, B, A float64
}

// Style is everything about a shape's look that selection highlighting is
// allowed to touch.
type Style struct {
	StrokeColor Color
	FillColor   Color
	StrokeWidth float32
	Dashed      bool
}

// Rect is an axis-aligned box in plan coordinates.
type Rect struct {
	Min, Max mathgl.Vec2
}

// MakeRect normalizes two corners into a Rect.
func MakeRect(a, b mathgl.Vec2) Rect {
	var r Rect
	r.Min.X, r.Max.X = minf(a.X, b.X), maxf(a.X, b.X)
	r.Min.Y, r.Max.Y = minf(a.Y, b.Y), maxf(a.Y, b.Y)
	return r
}

func (r Rect) Contains(o Rect) bool {
	return o.Min.X >= r.Min.X && o.Max.X <= r.Max.X &&
		o.Min.Y >= r.Min.Y && o.Max.Y <= r.Max.Y
}

func (r Rect) Intersects(o Rect) bool {
	return o.Min.X <= r.Max.X && o.Max.X >= r.Min.X &&
		o.Min.Y <= r.Max.Y && o.Max.Y >= r.Min.Y
}

func (r Rect) ContainsPoint(p mathgl.Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Center() mathgl.Vec2 {
	return mathgl.Vec2{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: mathgl.Vec2{X: minf(r.Min.X, o.Min.X), Y: minf(r.Min.Y, o.Min.Y)},
		Max: mathgl.Vec2{X: maxf(r.Max.X, o.Max.X), Y: maxf(r.Max.Y, o.Max.Y)},
	}
}

// Geometry is the transformable part of a shape, snapshotted at the start
// of a transform session and restored verbatim on cancel.
type Geometry struct {
	Pos           mathgl.Vec2
	Width, Height float32
	Rotation      float32
	Points        []mathgl.Vec2
}

// Shape is one drawable object on the plan. Rect-like categories use Pos
// (min corner of the unrotated rect), Width, Height and Rotation (degrees
// in [0,360), about the rect center). Walls use Points instead.
type Shape struct {
	Id         string
	Category   Category
	DefName    string
	Pos        mathgl.Vec2
	Width      float32
	Height     float32
	Rotation   float32
	Points     []mathgl.Vec2
	Selectable bool
	Style      Style

	// registry insertion order, assigned on Add
	seq int
}

func (s *Shape) IsLine() bool {
	return s.Category == CategoryWall
}

func (s *Shape) Center() mathgl.Vec2 {
	if s.IsLine() {
		return s.AABB().Center()
	}
	return mathgl.Vec2{X: s.Pos.X + s.Width/2, Y: s.Pos.Y + s.Height/2}
}

func (s *Shape) Geometry() Geometry {
	g := Geometry{
		Pos:      s.Pos,
		Width:    s.Width,
		Height:   s.Height,
		Rotation: s.Rotation,
	}
	if len(s.Points) > 0 {
		g.Points = make([]mathgl.Vec2, len(s.Points))
		copy(g.Points, s.Points)
	}
	return g
}

func (s *Shape) SetGeometry(g Geometry) {
	s.Pos = g.Pos
	s.Width = g.Width
	s.Height = g.Height
	s.Rotation = g.Rotation
	if len(g.Points) > 0 {
		s.Points = make([]mathgl.Vec2, len(g.Points))
		copy(s.Points, g.Points)
	} else {
		s.Points = nil
	}
}

// Corners returns the four box corners after the shape's rotation about
// its center, wound from Min. Meaningless for lines.
func (s *Shape) Corners() [4]mathgl.Vec2 {
	if s.Rotation == 0 {
		return [4]mathgl.Vec2{
			s.Pos,
			{X: s.Pos.X + s.Width, Y: s.Pos.Y},
			{X: s.Pos.X + s.Width, Y: s.Pos.Y + s.Height},
			{X: s.Pos.X, Y: s.Pos.Y + s.Height},
		}
	}

	c := s.Center()
	var run, m mathgl.Mat3
	run.Identity()
	m.Translation(c.X, c.Y)
	run.Multiply(&m)
	m.RotationZ(s.Rotation * math.Pi / 180)
	run.Multiply(&m)

	hw, hh := s.Width/2, s.Height/2
	corners := [4]mathgl.Vec2{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
	for i := range corners {
		corners[i].Transform(&run)
	}
	return corners
}

// AABB bounds the shape after its own rotation: corners are rotated about
// the shape's center and the extremes accumulated.
func (s *Shape) AABB() Rect {
	if s.IsLine() {
		if len(s.Points) == 0 {
			return Rect{}
		}
		r := Rect{Min: s.Points[0], Max: s.Points[0]}
		for _, p := range s.Points[1:] {
			r.Min.X = minf(r.Min.X, p.X)
			r.Min.Y = minf(r.Min.Y, p.Y)
			r.Max.X = maxf(r.Max.X, p.X)
			r.Max.Y = maxf(r.Max.Y, p.Y)
		}
		return r
	}

	if s.Rotation == 0 {
		return Rect{
			Min: s.Pos,
			Max: mathgl.Vec2{X: s.Pos.X + s.Width, Y: s.Pos.Y + s.Height},
		}
	}

	corners := s.Corners()
	r := Rect{Min: corners[0], Max: corners[0]}
	for _, p := range corners[1:] {
		r.Min.X = minf(r.Min.X, p.X)
		r.Min.Y = minf(r.Min.Y, p.Y)
		r.Max.X = maxf(r.Max.X, p.X)
		r.Max.Y = maxf(r.Max.Y, p.Y)
	}
	return r
}

// HitTest reports whether pt lands on the shape. slop widens the shape a
// little so thin walls stay clickable.
func (s *Shape) HitTest(pt mathgl.Vec2, slop float32) bool {
	if s.IsLine() {
		reach := s.Style.StrokeWidth/2 + slop
		for i := 0; i+1 < len(s.Points); i++ {
			if distToSegment(pt, s.Points[i], s.Points[i+1]) <= reach {
				return true
			}
		}
		return false
	}

	c := s.Center()
	d := mathgl.Vec2{X: pt.X - c.X, Y: pt.Y - c.Y}
	if s.Rotation != 0 {
		rad := float64(-s.Rotation * math.Pi / 180)
		sin, cos := float32(math.Sin(rad)), float32(math.Cos(rad))
		d = mathgl.Vec2{X: d.X*cos - d.Y*sin, Y: d.X*sin + d.Y*cos}
	}
	return absf(d.X) <= s.Width/2+slop && absf(d.Y) <= s.Height/2+slop
}

func distToSegment(p, a, b mathgl.Vec2) float32 {
	ab := mathgl.Vec2{X: b.X - a.X, Y: b.Y - a.Y}
	ap := mathgl.Vec2{X: p.X - a.X, Y: p.Y - a.Y}
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return float32(math.Hypot(float64(ap.X), float64(ap.Y)))
	}
	t := (ap.X*ab.X + ap.Y*ab.Y) / lenSq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	dx := p.X - (a.X + t*ab.X)
	dy := p.Y - (a.Y + t*ab.Y)
	return float32(math.Hypot(float64(dx), float64(dy)))
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
