package plan

import (
	"math"

	"github.com/MobRulesGames/mathgl"
	"github.com/floorworks/planedit/logging"
	"github.com/floorworks/planedit/plan/snap"
)

// HandleMode picks which handle set a selection gets. Mixed selections use
// the first selected shape's mode.
type HandleMode int

const (
	// free resize on both axes plus a rotate handle
	ModeFree HandleMode = iota
	// one handle per wall endpoint, nothing else
	ModeEndpoints
	// corner handles that scale both axes together, no rotate
	ModeUniform
)

func (m HandleMode) String() string {
	switch m {
	case ModeFree:
		return "free"
	case ModeEndpoints:
		return "endpoints"
	case ModeUniform:
		return "uniform"
	}
	return "unknown"
}

type HandleKind int

const (
	HandleResize HandleKind = iota
	HandleRotate
	HandleEndpoint
)

// Handle is one grabbable anchor. Resize handles sit at (AnchorX, AnchorY)
// fractions of the selection bounds; endpoint handles name the wall point
// they move.
type Handle struct {
	Kind             HandleKind
	AnchorX, AnchorY float32
	ShapeId          string
	PointIndex       int
	Pos              mathgl.Vec2
}

type transformKind int

const (
	transformNone transformKind = iota
	transformMove
	transformResize
	transformRotate
	transformEndpoint
)

const (
	minShapeDim        float32 = 1
	rotateHandleOffset float32 = 16
)

// HandleController attaches transform handles to the current selection and
// runs drag sessions against them. Geometry is recomputed from the session
// snapshots on every update, so repeated updates don't accumulate error
// and cancel restores the snapshots untouched.
type HandleController struct {
	reg     *ShapeRegistry
	painter SurfacePainter
	snapCtx *snap.Context

	AngleIncrement float32
	AngleTolerance float32
	HandleSize     float32

	ids  []string
	mode HandleMode

	kind        transformKind
	snapshots   map[string]Geometry
	index       *snap.Index
	start       mathgl.Vec2
	startBounds Rect
	fixed       mathgl.Vec2
	grabbed     mathgl.Vec2
	anchorX     float32
	anchorY     float32
	epShape     string
	epIndex     int
	minScaleX   float32
	minScaleY   float32
	guides      []snap.Guide
}

func MakeHandleController(reg *ShapeRegistry, snapCtx *snap.Context, painter SurfacePainter) *HandleController {
	if painter == nil {
		painter = NoopPainter()
	}
	return &HandleController{
		reg:            reg,
		painter:        painter,
		snapCtx:        snapCtx,
		AngleIncrement: 45,
		AngleTolerance: 5,
		HandleSize:     6,
	}
}

// AttachTo points the handles at the given shapes. Unknown ids are dropped
// with a debug log; attaching to nothing is the same as Detach.
func (hc *HandleController) AttachTo(ids []string) {
	if hc.kind != transformNone {
		hc.End(false)
	}
	hc.ids = hc.ids[:0]
	for _, id := range ids {
		if hc.reg.Get(id) == nil {
			logging.Debug("attach to unknown shape", "id", id)
			continue
		}
		hc.ids = append(hc.ids, id)
	}
	if len(hc.ids) == 0 {
		hc.Detach()
		return
	}
	hc.mode = modeFor(hc.reg.Get(hc.ids[0]).Category)
	logging.Trace("handles attached", "ids", hc.ids, "mode", hc.mode)
	hc.painter.MarkDirty(LayerOverlay)
}

// Detach drops the handles. Safe to call repeatedly, and an in-flight drag
// is cancelled first so shapes never keep half-applied geometry.
func (hc *HandleController) Detach() {
	if hc.kind != transformNone {
		hc.End(false)
	}
	if len(hc.ids) == 0 {
		return
	}
	hc.ids = hc.ids[:0]
	hc.painter.MarkDirty(LayerOverlay)
}

// DetachIfReferencing detaches when any of the given ids is under the
// handles. Called ahead of shape removal.
func (hc *HandleController) DetachIfReferencing(ids []string) {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	for _, id := range hc.ids {
		if doomed[id] {
			hc.Detach()
			return
		}
	}
}

func (hc *HandleController) Attached() []string {
	out := make([]string, len(hc.ids))
	copy(out, hc.ids)
	return out
}

func (hc *HandleController) Mode() HandleMode {
	return hc.mode
}

func (hc *HandleController) Transforming() bool {
	return hc.kind != transformNone
}

// Guides are the alignment guides of the drag in progress, empty otherwise.
func (hc *HandleController) Guides() []snap.Guide {
	return hc.guides
}

// Bounds is the union AABB of the attached shapes, tracked live as they
// transform.
func (hc *HandleController) Bounds() Rect {
	var b Rect
	first := true
	for _, id := range hc.ids {
		s := hc.reg.Get(id)
		if s == nil {
			continue
		}
		if first {
			b = s.AABB()
			first = false
			continue
		}
		b = b.Union(s.AABB())
	}
	return b
}

func modeFor(cat Category) HandleMode {
	switch cat {
	case CategoryWall:
		return ModeEndpoints
	case CategoryRoom:
		return ModeUniform
	}
	return ModeFree
}

var freeAnchors = [][2]float32{
	{0, 0}, {0.5, 0}, {1, 0},
	{0, 0.5}, {1, 0.5},
	{0, 1}, {0.5, 1}, {1, 1},
}

var cornerAnchors = [][2]float32{
	{0, 0}, {1, 0}, {0, 1}, {1, 1},
}

// Handles lists the current anchors. Recomputed from live geometry so it
// stays correct mid-drag.
func (hc *HandleController) Handles() []Handle {
	if len(hc.ids) == 0 {
		return nil
	}
	b := hc.Bounds()
	var out []Handle
	switch hc.mode {
	case ModeEndpoints:
		for _, id := range hc.ids {
			s := hc.reg.Get(id)
			if s == nil || !s.IsLine() {
				continue
			}
			for i, p := range s.Points {
				out = append(out, Handle{
					Kind:       HandleEndpoint,
					ShapeId:    id,
					PointIndex: i,
					Pos:        p,
				})
			}
		}
	case ModeUniform:
		for _, a := range cornerAnchors {
			out = append(out, Handle{
				Kind:    HandleResize,
				AnchorX: a[0],
				AnchorY: a[1],
				Pos:     anchorPos(b, a[0], a[1]),
			})
		}
	default:
		for _, a := range freeAnchors {
			out = append(out, Handle{
				Kind:    HandleResize,
				AnchorX: a[0],
				AnchorY: a[1],
				Pos:     anchorPos(b, a[0], a[1]),
			})
		}
		out = append(out, Handle{
			Kind: HandleRotate,
			Pos:  mathgl.Vec2{X: b.Center().X, Y: b.Max.Y + rotateHandleOffset},
		})
	}
	return out
}

func anchorPos(b Rect, ax, ay float32) mathgl.Vec2 {
	return mathgl.Vec2{
		X: b.Min.X + ax*(b.Max.X-b.Min.X),
		Y: b.Min.Y + ay*(b.Max.Y-b.Min.Y),
	}
}

// HitHandle returns the handle under pt, or nil. Endpoint handles win over
// box handles when both are in reach.
func (hc *HandleController) HitHandle(pt mathgl.Vec2) *Handle {
	var best *Handle
	bestDist := hc.HandleSize
	for _, h := range hc.Handles() {
		h := h
		d := float32(math.Hypot(float64(pt.X-h.Pos.X), float64(pt.Y-h.Pos.Y)))
		if d <= bestDist {
			best = &h
			bestDist = d
		}
	}
	return best
}

func (hc *HandleController) beginSession(start mathgl.Vec2) {
	hc.snapshots = make(map[string]Geometry, len(hc.ids))
	exclude := make(map[string]bool, len(hc.ids))
	for _, id := range hc.ids {
		if s := hc.reg.Get(id); s != nil {
			hc.snapshots[id] = s.Geometry()
			exclude[id] = true
		}
	}
	hc.index = snap.MakeIndex(hc.reg.SnapTargets(exclude))
	hc.start = start
	hc.startBounds = hc.Bounds()
	hc.guides = nil
}

// BeginMove starts dragging the whole selection from start.
func (hc *HandleController) BeginMove(start mathgl.Vec2) {
	if len(hc.ids) == 0 || hc.kind != transformNone {
		return
	}
	hc.beginSession(start)
	hc.kind = transformMove
	logging.Trace("move begins", "ids", hc.ids, "start", start)
}

// BeginHandle starts a drag on one handle.
func (hc *HandleController) BeginHandle(h Handle, start mathgl.Vec2) {
	if len(hc.ids) == 0 || hc.kind != transformNone {
		return
	}
	hc.beginSession(start)
	switch h.Kind {
	case HandleRotate:
		hc.kind = transformRotate
	case HandleEndpoint:
		hc.kind = transformEndpoint
		hc.epShape = h.ShapeId
		hc.epIndex = h.PointIndex
	default:
		hc.kind = transformResize
		hc.anchorX, hc.anchorY = h.AnchorX, h.AnchorY
		hc.fixed = anchorPos(hc.startBounds, 1-h.AnchorX, 1-h.AnchorY)
		hc.grabbed = h.Pos
		hc.minScaleX, hc.minScaleY = hc.minScales()
	}
	logging.Trace("handle drag begins", "kind", hc.kind, "ids", hc.ids)
}

// minScales caps shrinking so no rect shape goes under minShapeDim on
// either axis.
func (hc *HandleController) minScales() (float32, float32) {
	sx, sy := float32(0.01), float32(0.01)
	for _, g := range hc.snapshots {
		if len(g.Points) > 0 {
			continue
		}
		if g.Width > 0 {
			sx = maxf(sx, minShapeDim/g.Width)
		}
		if g.Height > 0 {
			sy = maxf(sy, minShapeDim/g.Height)
		}
	}
	return sx, sy
}

// Update applies the drag in progress at the new pointer position.
func (hc *HandleController) Update(pt mathgl.Vec2) {
	switch hc.kind {
	case transformMove:
		hc.updateMove(pt)
	case transformResize:
		hc.updateResize(pt)
	case transformRotate:
		hc.updateRotate(pt)
	case transformEndpoint:
		hc.updateEndpoint(pt)
	default:
		return
	}
	hc.painter.MarkDirty(LayerShapes)
	hc.painter.MarkDirty(LayerOverlay)
	hc.painter.MarkDirty(LayerGuides)
}

// End finishes the drag. With commit the current geometry stands; without
// it every shape gets its snapshot back untouched.
func (hc *HandleController) End(commit bool) {
	if hc.kind == transformNone {
		return
	}
	if !commit {
		for id, g := range hc.snapshots {
			if s := hc.reg.Get(id); s != nil {
				s.SetGeometry(g)
			}
		}
	} else {
		for id := range hc.snapshots {
			if s := hc.reg.Get(id); s != nil {
				s.Rotation = snap.NormalizeDegrees(s.Rotation)
			}
		}
	}
	logging.Trace("transform ends", "commit", commit, "ids", hc.ids)
	hc.kind = transformNone
	hc.snapshots = nil
	hc.index = nil
	hc.guides = nil
	hc.painter.MarkDirty(LayerShapes)
	hc.painter.MarkDirty(LayerOverlay)
	hc.painter.MarkDirty(LayerGuides)
}

func (hc *HandleController) updateMove(pt mathgl.Vec2) {
	dx := pt.X - hc.start.X
	dy := pt.Y - hc.start.Y

	// Probe the moved box's min corner, center and max corner and keep the
	// best correction per axis.
	b := hc.startBounds
	c := b.Center()
	probes := []mathgl.Vec2{
		{X: b.Min.X + dx, Y: b.Min.Y + dy},
		{X: c.X + dx, Y: c.Y + dy},
		{X: b.Max.X + dx, Y: b.Max.Y + dy},
	}
	var merged [2]snap.Result
	var corrections [2]float32
	for _, probe := range probes {
		_, results := hc.index.Point(probe, *hc.snapCtx)
		for axis := 0; axis < 2; axis++ {
			r := results[axis]
			if !r.Snapped {
				continue
			}
			if !merged[axis].Snapped || r.Dist < merged[axis].Dist {
				merged[axis] = r
				corrections[axis] = r.Value - probeAxis(probe, axis)
			}
		}
	}
	if merged[0].Snapped {
		dx += corrections[0]
	}
	if merged[1].Snapped {
		dy += corrections[1]
	}

	for id, g := range hc.snapshots {
		s := hc.reg.Get(id)
		if s == nil {
			continue
		}
		moved := g
		moved.Pos = mathgl.Vec2{X: g.Pos.X + dx, Y: g.Pos.Y + dy}
		if len(g.Points) > 0 {
			moved.Points = make([]mathgl.Vec2, len(g.Points))
			for i, p := range g.Points {
				moved.Points[i] = mathgl.Vec2{X: p.X + dx, Y: p.Y + dy}
			}
		}
		s.SetGeometry(moved)
	}

	movedMin := mathgl.Vec2{X: b.Min.X + dx, Y: b.Min.Y + dy}
	movedMax := mathgl.Vec2{X: b.Max.X + dx, Y: b.Max.Y + dy}
	hc.guides = hc.index.GuidesFor(movedMin, movedMax, merged)
}

func probeAxis(p mathgl.Vec2, axis int) float32 {
	if axis == 0 {
		return p.X
	}
	return p.Y
}

func (hc *HandleController) updateResize(pt mathgl.Vec2) {
	snapped, results := hc.index.Point(pt, *hc.snapCtx)
	if hc.anchorX == 0.5 {
		snapped.X = pt.X
		results[0] = snap.Result{}
	}
	if hc.anchorY == 0.5 {
		snapped.Y = pt.Y
		results[1] = snap.Result{}
	}

	sx, sy := float32(1), float32(1)
	if hc.anchorX != 0.5 {
		sx = scaleFactor(snapped.X, hc.grabbed.X, hc.fixed.X, hc.minScaleX)
	}
	if hc.anchorY != 0.5 {
		sy = scaleFactor(snapped.Y, hc.grabbed.Y, hc.fixed.Y, hc.minScaleY)
	}
	if hc.mode == ModeUniform {
		s := uniformScale(snapped, hc.grabbed, hc.fixed)
		s = maxf(s, maxf(hc.minScaleX, hc.minScaleY))
		sx, sy = s, s
	}

	hc.applyScale(sx, sy)
	b := hc.Bounds()
	hc.guides = hc.index.GuidesFor(b.Min, b.Max, results)
}

func scaleFactor(v, grabbed, fixed, minScale float32) float32 {
	denom := grabbed - fixed
	if absf(denom) < 1e-6 {
		return 1
	}
	s := (v - fixed) / denom
	return maxf(s, minScale)
}

// uniformScale measures how far the pointer moved along the fixed-to-grab
// diagonal, as a ratio.
func uniformScale(pt, grabbed, fixed mathgl.Vec2) float32 {
	base := float32(math.Hypot(float64(grabbed.X-fixed.X), float64(grabbed.Y-fixed.Y)))
	if base < 1e-6 {
		return 1
	}
	cur := float32(math.Hypot(float64(pt.X-fixed.X), float64(pt.Y-fixed.Y)))
	return cur / base
}

func (hc *HandleController) applyScale(sx, sy float32) {
	fx, fy := hc.fixed.X, hc.fixed.Y
	for id, g := range hc.snapshots {
		s := hc.reg.Get(id)
		if s == nil {
			continue
		}
		scaled := g
		if len(g.Points) > 0 {
			scaled.Points = make([]mathgl.Vec2, len(g.Points))
			for i, p := range g.Points {
				scaled.Points[i] = mathgl.Vec2{
					X: fx + (p.X-fx)*sx,
					Y: fy + (p.Y-fy)*sy,
				}
			}
		} else {
			scaled.Pos = mathgl.Vec2{
				X: fx + (g.Pos.X-fx)*sx,
				Y: fy + (g.Pos.Y-fy)*sy,
			}
			scaled.Width = maxf(g.Width*sx, minShapeDim)
			scaled.Height = maxf(g.Height*sy, minShapeDim)
		}
		s.SetGeometry(scaled)
	}
}

func (hc *HandleController) updateRotate(pt mathgl.Vec2) {
	c := hc.startBounds.Center()
	a0 := degrees(math.Atan2(float64(hc.start.Y-c.Y), float64(hc.start.X-c.X)))
	a1 := degrees(math.Atan2(float64(pt.Y-c.Y), float64(pt.X-c.X)))
	delta := a1 - a0

	// Snap the first shape's resulting angle and carry the implied delta to
	// the rest, so the group turns as one.
	ref := hc.snapshots[hc.ids[0]].Rotation
	target := ref + delta
	snapped := snap.Angle(target, hc.AngleIncrement, hc.AngleTolerance)
	delta += shortestDiff(snapped, snap.NormalizeDegrees(target))

	rad := float64(delta * math.Pi / 180)
	sin, cos := float32(math.Sin(rad)), float32(math.Cos(rad))
	rotate := func(p mathgl.Vec2) mathgl.Vec2 {
		rx, ry := p.X-c.X, p.Y-c.Y
		return mathgl.Vec2{
			X: c.X + rx*cos - ry*sin,
			Y: c.Y + rx*sin + ry*cos,
		}
	}

	for id, g := range hc.snapshots {
		s := hc.reg.Get(id)
		if s == nil {
			continue
		}
		turned := g
		if len(g.Points) > 0 {
			turned.Points = make([]mathgl.Vec2, len(g.Points))
			for i, p := range g.Points {
				turned.Points[i] = rotate(p)
			}
		} else {
			center := mathgl.Vec2{X: g.Pos.X + g.Width/2, Y: g.Pos.Y + g.Height/2}
			moved := rotate(center)
			turned.Pos = mathgl.Vec2{X: moved.X - g.Width/2, Y: moved.Y - g.Height/2}
			turned.Rotation = snap.NormalizeDegrees(g.Rotation + delta)
		}
		s.SetGeometry(turned)
	}
}

func (hc *HandleController) updateEndpoint(pt mathgl.Vec2) {
	s := hc.reg.Get(hc.epShape)
	if s == nil {
		return
	}
	g, ok := hc.snapshots[hc.epShape]
	if !ok || hc.epIndex < 0 || hc.epIndex >= len(g.Points) {
		return
	}
	snapped, results := hc.index.Point(pt, *hc.snapCtx)
	moved := g
	moved.Points = make([]mathgl.Vec2, len(g.Points))
	copy(moved.Points, g.Points)
	moved.Points[hc.epIndex] = snapped
	s.SetGeometry(moved)
	hc.guides = hc.index.GuidesFor(snapped, snapped, results)
}

func degrees(rad float64) float32 {
	return float32(rad * 180 / math.Pi)
}

// shortestDiff is the signed smallest rotation from a to b, in degrees.
func shortestDiff(b, a float32) float32 {
	d := b - a
	for d > 180 {
		d -= 360
	}
	for d <= -180 {
		d += 360
	}
	return d
}
