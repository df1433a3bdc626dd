package plan

import (
	"fmt"
	"math"

	"github.com/MobRulesGames/mathgl"
	"github.com/floorworks/planedit/base"
	"github.com/floorworks/planedit/logging"
	"github.com/floorworks/planedit/plan/snap"
	"github.com/go-gl-legacy/gl"
	"github.com/runningwild/glop/gin"
	"github.com/runningwild/glop/gui"
	"github.com/runningwild/glop/render"
)

const (
	zoomPerWheelTick = 1.15
	minViewZoom      = 0.1
	maxViewZoom      = 40

	// Grid lines closer together than this on screen are just noise.
	minGridSpacingPx = 4

	dashPeriodPx = 8
)

type PlanViewerState struct {
	zoom, fx, fy float32
	view, iview  mathgl.Mat4

	// target[xy] are the values that f[xy] approach, so that refocusing
	// glides instead of teleporting. All such values are in plan units.
	targetx, targety float32
	target_on        bool

	// as above, but for zooming
	targetzoom     float32
	target_zoom_on bool

	// Need to keep track of time so we can measure time between thinks
	last_timestamp int64

	panning panState
}

func (st *PlanViewerState) GetFocus() (float32, float32) {
	return st.fx, st.fy
}

// PlanViewer is the drawing surface for an Editor. It owns the window to
// plan mapping, pans and zooms, routes pointer and key events into the
// editor, and repaints the plan every frame.
type PlanViewer struct {
	gui.Childless
	gui.BasicZone
	gui.StubDrawFocuseder

	editor *Editor

	PlanViewerState

	dirty  [NumLayers]bool
	cstack base.ColorStack
}

var _ SurfacePainter = (*PlanViewer)(nil)

func MakePlanViewer() *PlanViewer {
	ret := &PlanViewer{
		BasicZone: gui.BasicZone{
			Request_dims: gui.Dims{
				Dx: 100,
				Dy: 100,
			},
			Ex: true,
			Ey: true,
		},
	}

	ret.SetZoom(1)
	ret.SetFocusTarget(0, 0)

	return ret
}

// SetEditor attaches the editor whose plan this viewer paints. The viewer
// draws nothing and consumes no pointer events until one is attached.
func (pv *PlanViewer) SetEditor(ed *Editor) {
	pv.editor = ed
}

func (pv *PlanViewer) Editor() *Editor {
	return pv.editor
}

func (pv *PlanViewer) MarkDirty(layer Layer) {
	if layer < 0 || layer >= NumLayers {
		logging.Warn("MarkDirty with bogus layer", "layer", layer)
		return
	}
	pv.dirty[layer] = true
}

func (pv *PlanViewer) Redraw(layer Layer) {
	// The whole plan is repainted every frame, so a forced redraw only
	// needs the mark.
	pv.MarkDirty(layer)
}

func (pv *PlanViewer) SetZoom(z float32) {
	if z <= 0 {
		panic(fmt.Errorf("a non-positive zoom would draw nothing: %v", z))
	}
	pv.zoom = z
	pv.targetzoom = z
	pv.target_zoom_on = false
}

func (pv *PlanViewer) GetZoom() float32 {
	return pv.zoom
}

func (pv *PlanViewer) SetFocusTarget(px, py float32) {
	pv.targetx = px
	pv.targety = py
	pv.target_on = true
}

func (pv *PlanViewer) SetZoomTarget(z float32) {
	pv.targetzoom = maxf(minViewZoom, minf(maxViewZoom, z))
	pv.target_zoom_on = true
}

func (pv *PlanViewer) String() string {
	return fmt.Sprintf("PlanViewer{focus: (%v, %v), zoom: %v, region: %+v}",
		pv.fx, pv.fy, pv.zoom, pv.Render_region)
}

// makeViewTransforms rebuilds the plan-to-window matrix and its inverse.
// Matrix multiplication composes in reverse application order, so read
// from the last step up.
func (pv *PlanViewer) makeViewTransforms() {
	region := pv.Render_region
	var m mathgl.Mat4

	// Step 3: centre the result in the target region.
	pv.view.Translation(float32(region.X+region.Dx/2), float32(region.Y+region.Dy/2), 0)

	// Step 2: scale plan units up to pixels.
	m.Scaling(pv.zoom, pv.zoom, 1)
	pv.view.Multiply(&m)

	// Step 1: move the focus to the origin so it lands in the window centre.
	m.Translation(-pv.fx, -pv.fy, 0)
	pv.view.Multiply(&m)

	pv.iview.Assign(&pv.view)
	pv.iview.Inverse()
}

func (pv *PlanViewer) WindowToPlan(wx, wy int) (float32, float32) {
	pv.makeViewTransforms()

	v := mathgl.Vec4{X: float32(wx), Y: float32(wy), W: 1}
	v.Transform(&pv.iview)
	return v.X, v.Y
}

func (pv *PlanViewer) PlanToWindow(px, py float32) (int, int) {
	pv.makeViewTransforms()

	v := mathgl.Vec4{X: px, Y: py, W: 1}
	v.Transform(&pv.view)
	return int(v.X), int(v.Y)
}

func multiSelectHeld() bool {
	return gin.In().GetKeyById(gin.AnyLeftShift).IsDown() ||
		gin.In().GetKeyById(gin.AnyRightShift).IsDown()
}

func spaceHeld() bool {
	return gin.In().GetKeyById(gin.AnySpace).CurPressAmt() != 0
}

// interactionInFlight reports whether the editor is mid drag, in which
// case mouse motion belongs to it rather than to panning.
func (pv *PlanViewer) interactionInFlight() bool {
	if pv.editor == nil {
		return false
	}
	return pv.editor.Handles().Transforming() || pv.editor.Fence().Active()
}

func (pv *PlanViewer) Respond(g *gui.Gui, group gui.EventGroup) bool {
	if group.IsPressed(gin.AnyMouseWheelVertical) {
		var wheelKey gin.Key = group.PrimaryEvent().Key
		zoomDelta := wheelKey.CurPressTotal()
		if zoomDelta != 0 {
			pv.SetZoomTarget(pv.targetzoom * float32(math.Pow(zoomPerWheelTick, zoomDelta)))
		}
		return true
	}

	panButtons := []gin.KeyId{gin.AnyMouseRButton}
	if spaceHeld() && !pv.interactionInFlight() {
		panButtons = append(panButtons, gin.AnyMouseLButton)
	}
	if pv.panning.HandleEventGroup(pv, group, panButtons...) {
		return true
	}

	if pv.editor == nil {
		return false
	}

	if group.IsPressed(gin.AnyEscape) {
		pv.editor.CancelInteraction()
		return true
	}

	if group.IsPressed(gin.AnyBackspace) || group.IsPressed(gin.AnyKeyDelete) {
		pv.editor.DeleteSelected()
		return true
	}

	if found, event := group.FindEvent(gin.AnyMouseLButton); found {
		if mpos, ok := g.UseMousePosition(group); ok {
			px, py := pv.WindowToPlan(mpos.X, mpos.Y)
			pt := mathgl.Vec2{X: px, Y: py}
			if event.Type == gin.Press {
				pv.editor.PointerDown(pt, multiSelectHeld())
			} else {
				pv.editor.PointerUp(pt, multiSelectHeld())
			}
		}
		return true
	}

	if group.IsMouseMove() {
		mpos := group.GetMousePosition()
		px, py := pv.WindowToPlan(mpos.X, mpos.Y)
		pv.editor.PointerMove(mathgl.Vec2{X: px, Y: py})
		return pv.interactionInFlight()
	}

	return false
}

func (pv *PlanViewer) Think(g *gui.Gui, t int64) {
	dt := t - pv.last_timestamp
	pv.last_timestamp = t

	if dt < 0 {
		panic(fmt.Errorf("clock ran backwards: dt=%v", dt))
	}

	// as 'dt' grows, 'scale' approaches 1
	scale := 1 - float32(math.Pow(0.005, float64(dt)/1000))

	if pv.target_on {
		f := mathgl.Vec2{X: pv.fx, Y: pv.fy}
		v := mathgl.Vec2{X: pv.targetx, Y: pv.targety}
		v.Subtract(&f)
		v.Scale(scale)
		f.Add(&v)
		pv.fx = f.X
		pv.fy = f.Y
	}

	if pv.fx == pv.targetx && pv.fy == pv.targety {
		pv.target_on = false
	}

	if pv.target_zoom_on {
		exp := math.Log(float64(pv.zoom))
		exp += (math.Log(float64(pv.targetzoom)) - exp) * float64(scale)
		pv.zoom = float32(math.Exp(exp))
		if math.Abs(float64(pv.zoom-pv.targetzoom)) < 0.001 {
			pv.target_zoom_on = false
		}
	}
}

func (pv *PlanViewer) Draw(region gui.Region, ctx gui.DrawingContext) {
	logging.Trace("PlanViewer.Draw", "pv", pv, "dirty", pv.dirty)
	region.PushClipPlanes()
	defer region.PopClipPlanes()

	pv.Render_region = region
	for i := range pv.dirty {
		pv.dirty[i] = false
	}

	if pv.editor == nil {
		return
	}

	gl.Disable(gl.TEXTURE_2D)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	pv.makeViewTransforms()
	render.WithMultMatrixInMode(&pv.view, render.MatrixModeModelView, func() {
		pv.drawGrid()
		pv.drawShapes()
		pv.drawGuides()
		pv.drawFence()
		pv.drawHandles()
	})
}

func (pv *PlanViewer) drawGrid() {
	ctx := pv.editor.SnapContext()
	if !ctx.GridEnabled {
		return
	}
	pitch := ctx.GridPitch
	if pitch <= 0 || pitch*pv.zoom < minGridSpacingPx {
		return
	}

	region := pv.Render_region
	x0, y0 := pv.WindowToPlan(region.X, region.Y)
	x1, y1 := pv.WindowToPlan(region.X+region.Dx, region.Y+region.Dy)

	pv.cstack.Push(0.42, 0.48, 0.55, 0.28)
	pv.cstack.Apply()
	pv.cstack.Pop()

	gl.Begin(gl.LINES)
	for x := pitch * float32(math.Floor(float64(x0/pitch))); x <= x1; x += pitch {
		gl.Vertex2f(x, y0)
		gl.Vertex2f(x, y1)
	}
	for y := pitch * float32(math.Floor(float64(y0/pitch))); y <= y1; y += pitch {
		gl.Vertex2f(x0, y)
		gl.Vertex2f(x1, y)
	}
	gl.End()
}

// Rooms paint first so everything else shows on top of them.
var paintOrder = []Category{CategoryRoom, CategoryWall, CategoryEquipment, CategoryComponent}

func (pv *PlanViewer) drawShapes() {
	reg := pv.editor.Registry()
	for _, cat := range paintOrder {
		for _, s := range reg.ByCategory(cat) {
			if s.IsLine() {
				pv.drawWall(s)
			} else {
				pv.drawBox(s)
			}
		}
	}
	gl.LineWidth(1)
}

func (pv *PlanViewer) drawBox(s *Shape) {
	corners := s.Corners()
	st := &s.Style

	if st.FillColor.A > 0 {
		gl.Color4d(st.FillColor.R, st.FillColor.G, st.FillColor.B, st.FillColor.A)
		gl.Begin(gl.QUADS)
		for _, c := range corners {
			gl.Vertex2f(c.X, c.Y)
		}
		gl.End()
	}

	gl.Color4d(st.StrokeColor.R, st.StrokeColor.G, st.StrokeColor.B, st.StrokeColor.A)
	if st.StrokeWidth > 0 {
		gl.LineWidth(st.StrokeWidth)
	} else {
		gl.LineWidth(1)
	}
	if st.Dashed {
		period := dashPeriodPx / pv.zoom
		gl.Begin(gl.LINES)
		for i := range corners {
			eachDash(corners[i], corners[(i+1)%4], period, func(a, b mathgl.Vec2) {
				gl.Vertex2f(a.X, a.Y)
				gl.Vertex2f(b.X, b.Y)
			})
		}
		gl.End()
	} else {
		gl.Begin(gl.LINE_LOOP)
		for _, c := range corners {
			gl.Vertex2f(c.X, c.Y)
		}
		gl.End()
	}
}

// Walls carry their thickness in plan units, so segments are filled as
// quads instead of stroked as lines.
func (pv *PlanViewer) drawWall(s *Shape) {
	st := &s.Style
	gl.Color4d(st.StrokeColor.R, st.StrokeColor.G, st.StrokeColor.B, st.StrokeColor.A)
	width := st.StrokeWidth
	if width <= 0 {
		width = 1
	}

	period := dashPeriodPx / pv.zoom
	gl.Begin(gl.QUADS)
	for i := 0; i+1 < len(s.Points); i++ {
		a, b := s.Points[i], s.Points[i+1]
		if st.Dashed {
			eachDash(a, b, period, func(da, db mathgl.Vec2) {
				wallQuad(da, db, width)
			})
		} else {
			wallQuad(a, b, width)
		}
	}
	gl.End()
}

func (pv *PlanViewer) drawGuides() {
	guides := pv.editor.Handles().Guides()
	if len(guides) == 0 {
		return
	}

	pv.cstack.Push(selectionAccent.R, selectionAccent.G, selectionAccent.B, 0.85)
	pv.cstack.Apply()
	pv.cstack.Pop()

	period := dashPeriodPx / pv.zoom
	gl.Begin(gl.LINES)
	for _, gd := range guides {
		var a, b mathgl.Vec2
		if gd.Axis == snap.AxisX {
			a = mathgl.Vec2{X: gd.Value, Y: gd.From}
			b = mathgl.Vec2{X: gd.Value, Y: gd.To}
		} else {
			a = mathgl.Vec2{X: gd.From, Y: gd.Value}
			b = mathgl.Vec2{X: gd.To, Y: gd.Value}
		}
		eachDash(a, b, period, func(da, db mathgl.Vec2) {
			gl.Vertex2f(da.X, da.Y)
			gl.Vertex2f(db.X, db.Y)
		})
	}
	gl.End()
}

var fenceCrossingTint = Color{R: 0.27, G: 0.65, B: 0.35, A: 1}

func (pv *PlanViewer) drawFence() {
	fence := pv.editor.Fence()
	if !fence.Active() {
		return
	}
	r := fence.Rect()
	crossing := fence.Mode() == FenceCrossing

	tint := selectionAccent
	if crossing {
		tint = fenceCrossingTint
	}

	pv.cstack.Push(1, 1, 1, 1)
	pv.cstack.Push(tint.R, tint.G, tint.B, 0.55)
	pv.cstack.ApplyWithAlpha(0.2)
	pv.cstack.Pop()
	pv.cstack.Pop()
	rectFill(r)

	gl.Color4d(tint.R, tint.G, tint.B, 0.9)
	if crossing {
		period := dashPeriodPx / pv.zoom
		corners := [4]mathgl.Vec2{
			r.Min,
			{X: r.Max.X, Y: r.Min.Y},
			r.Max,
			{X: r.Min.X, Y: r.Max.Y},
		}
		gl.Begin(gl.LINES)
		for i := range corners {
			eachDash(corners[i], corners[(i+1)%4], period, func(a, b mathgl.Vec2) {
				gl.Vertex2f(a.X, a.Y)
				gl.Vertex2f(b.X, b.Y)
			})
		}
		gl.End()
	} else {
		rectOutline(r)
	}
}

func (pv *PlanViewer) drawHandles() {
	hc := pv.editor.Handles()
	handles := hc.Handles()
	if len(handles) == 0 {
		return
	}

	if hc.Mode() != ModeEndpoints {
		b := hc.Bounds()
		gl.Color4d(selectionAccent.R, selectionAccent.G, selectionAccent.B, 0.5)
		rectOutline(b)
		if hc.Mode() == ModeFree {
			c := b.Center()
			gl.Begin(gl.LINES)
			gl.Vertex2f(c.X, b.Max.Y)
			gl.Vertex2f(c.X, b.Max.Y+rotateHandleOffset)
			gl.End()
		}
	}

	half := hc.HandleSize / 2
	for _, h := range handles {
		box := Rect{
			Min: mathgl.Vec2{X: h.Pos.X - half, Y: h.Pos.Y - half},
			Max: mathgl.Vec2{X: h.Pos.X + half, Y: h.Pos.Y + half},
		}
		switch h.Kind {
		case HandleRotate:
			gl.Color4d(selectionAccent.R, selectionAccent.G, selectionAccent.B, 1)
			gl.Begin(gl.QUADS)
			gl.Vertex2f(h.Pos.X, h.Pos.Y-half*1.4)
			gl.Vertex2f(h.Pos.X+half*1.4, h.Pos.Y)
			gl.Vertex2f(h.Pos.X, h.Pos.Y+half*1.4)
			gl.Vertex2f(h.Pos.X-half*1.4, h.Pos.Y)
			gl.End()
		case HandleEndpoint:
			gl.Color4d(selectionAccent.R, selectionAccent.G, selectionAccent.B, 1)
			rectFill(box)
		default:
			gl.Color4d(1, 1, 1, 1)
			rectFill(box)
			gl.Color4d(selectionAccent.R, selectionAccent.G, selectionAccent.B, 1)
			rectOutline(box)
		}
	}
}

func rectFill(r Rect) {
	gl.Begin(gl.QUADS)
	gl.Vertex2f(r.Min.X, r.Min.Y)
	gl.Vertex2f(r.Max.X, r.Min.Y)
	gl.Vertex2f(r.Max.X, r.Max.Y)
	gl.Vertex2f(r.Min.X, r.Max.Y)
	gl.End()
}

func rectOutline(r Rect) {
	gl.Begin(gl.LINE_LOOP)
	gl.Vertex2f(r.Min.X, r.Min.Y)
	gl.Vertex2f(r.Max.X, r.Min.Y)
	gl.Vertex2f(r.Max.X, r.Max.Y)
	gl.Vertex2f(r.Min.X, r.Max.Y)
	gl.End()
}

// wallQuad emits one segment as a filled quad; the caller owns the
// enclosing gl.Begin(gl.QUADS).
func wallQuad(a, b mathgl.Vec2, width float32) {
	d := b
	d.Subtract(&a)
	length := float32(math.Hypot(float64(d.X), float64(d.Y)))
	if length == 0 {
		return
	}
	hx := -d.Y / length * width / 2
	hy := d.X / length * width / 2
	gl.Vertex2f(a.X+hx, a.Y+hy)
	gl.Vertex2f(b.X+hx, b.Y+hy)
	gl.Vertex2f(b.X-hx, b.Y-hy)
	gl.Vertex2f(a.X-hx, a.Y-hy)
}

// eachDash walks the segment from a to b in period-sized steps, calling fn
// with the lit portion of each step.
func eachDash(a, b mathgl.Vec2, period float32, fn func(from, to mathgl.Vec2)) {
	d := b
	d.Subtract(&a)
	length := float32(math.Hypot(float64(d.X), float64(d.Y)))
	if length == 0 || period <= 0 {
		return
	}
	lit := period * 0.6
	for t := float32(0); t < length; t += period {
		end := t + lit
		if end > length {
			end = length
		}
		fn(pointAlong(a, d, t/length), pointAlong(a, d, end/length))
	}
}

func pointAlong(a, d mathgl.Vec2, t float32) mathgl.Vec2 {
	return mathgl.Vec2{X: a.X + d.X*t, Y: a.Y + d.Y*t}
}
