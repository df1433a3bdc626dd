package plan

import (
	"errors"

	"github.com/MobRulesGames/mathgl"
	"github.com/floorworks/planedit/logging"
	"github.com/floorworks/planedit/plan/snap"
)

type interactionMode int

const (
	modeIdle interactionMode = iota
	modeTransforming
	modeFencing
)

const hitSlop float32 = 4

// Editor wires the registry, selection, handles, fence and snapping into
// one input surface. It is deliberately free of any rendering or window
// dependency; the shell feeds it pointer positions in plan coordinates and
// a SurfacePainter hears about what changed.
type Editor struct {
	reg     *ShapeRegistry
	sel     *SelectionManager
	styler  *SelectionStyler
	handles *HandleController
	fence   *FenceController
	painter SurfacePainter
	snapCtx snap.Context

	mode       interactionMode
	armed      *Shape
	layoutName string
}

func MakeEditor(painter SurfacePainter) *Editor {
	if painter == nil {
		painter = NoopPainter()
	}
	ed := &Editor{
		reg:     MakeShapeRegistry(),
		painter: painter,
		snapCtx: snap.MakeContext(),
	}
	ed.sel = MakeSelectionManager(ed.reg)
	ed.styler = MakeSelectionStyler(ed.reg, painter)
	ed.handles = MakeHandleController(ed.reg, &ed.snapCtx, painter)
	ed.fence = MakeFenceController(ed.reg, ed.sel, painter)

	ed.sel.SetHandleDetacher(ed.handles)
	ed.sel.AddListener(ed.styler.OnSelectionChanged)
	ed.sel.AddListener(ed.onSelectionChanged)
	return ed
}

func (ed *Editor) Registry() *ShapeRegistry     { return ed.reg }
func (ed *Editor) Selection() *SelectionManager { return ed.sel }
func (ed *Editor) Handles() *HandleController   { return ed.handles }
func (ed *Editor) Fence() *FenceController      { return ed.fence }
func (ed *Editor) SnapContext() snap.Context    { return ed.snapCtx }

// onSelectionChanged keeps the handles pointed at whatever is selected.
// Mid-drag changes are left to the drag's own cleanup.
func (ed *Editor) onSelectionChanged(prev, cur []string) {
	if ed.handles.Transforming() {
		return
	}
	if len(cur) == 0 {
		ed.handles.Detach()
		return
	}
	ed.handles.AttachTo(cur)
}

// HitShape finds the topmost selectable shape under pt. Later additions
// draw on top, so the scan runs newest first.
func (ed *Editor) HitShape(pt mathgl.Vec2) *Shape {
	all := ed.reg.All()
	for i := len(all) - 1; i >= 0; i-- {
		s := all[i]
		if !s.Selectable {
			continue
		}
		if s.HitTest(pt, hitSlop) {
			return s
		}
	}
	return nil
}

// PointerDown starts whichever interaction the position calls for: placing
// an armed shape, grabbing a handle, grabbing a shape, or opening a fence.
// multi is the add-to-selection modifier.
func (ed *Editor) PointerDown(pt mathgl.Vec2, multi bool) {
	if ed.mode != modeIdle {
		return
	}
	if ed.armed != nil {
		ed.placeArmed(pt)
		return
	}

	if h := ed.handles.HitHandle(pt); h != nil {
		ed.handles.BeginHandle(*h, pt)
		ed.mode = modeTransforming
		return
	}

	if s := ed.HitShape(pt); s != nil {
		if multi {
			ed.sel.Toggle(s.Id)
			if !ed.sel.IsSelected(s.Id) {
				return
			}
		} else if !ed.sel.IsSelected(s.Id) {
			ed.sel.Select(s.Id, false)
		}
		ed.handles.BeginMove(pt)
		ed.mode = modeTransforming
		return
	}

	ed.fence.DragStart(pt)
	ed.mode = modeFencing
}

func (ed *Editor) PointerMove(pt mathgl.Vec2) {
	switch ed.mode {
	case modeTransforming:
		ed.handles.Update(pt)
	case modeFencing:
		ed.fence.DragMove(pt)
	}
}

// PointerUp ends the interaction in progress. Transforms commit; fences
// resolve against additive.
func (ed *Editor) PointerUp(pt mathgl.Vec2, additive bool) {
	switch ed.mode {
	case modeTransforming:
		ed.handles.Update(pt)
		ed.handles.End(true)
	case modeFencing:
		ed.fence.DragEnd(pt, additive)
	}
	ed.mode = modeIdle
}

// CancelInteraction is the escape hatch: an open drag rolls back, an open
// fence disappears, an armed placement disarms, and failing all that the
// selection clears.
func (ed *Editor) CancelInteraction() {
	switch {
	case ed.mode == modeTransforming:
		ed.handles.End(false)
	case ed.mode == modeFencing:
		ed.fence.Cancel()
	case ed.armed != nil:
		ed.armed = nil
	default:
		ed.sel.DeselectAll()
	}
	ed.mode = modeIdle
}

// Select exposes plain selection to scripts and panels.
func (ed *Editor) Select(id string, multi bool) {
	ed.sel.Select(id, multi)
}

func (ed *Editor) DeselectAll() {
	ed.sel.DeselectAll()
}

// SelectAll selects every selectable shape in one notification.
func (ed *Editor) SelectAll() {
	shapes := ed.reg.AllSelectable()
	ids := make([]string, 0, len(shapes))
	for _, s := range shapes {
		ids = append(ids, s.Id)
	}
	ed.sel.SelectMany(ids, false)
}

// DeleteSelected removes every selected shape. Handles detach before the
// first shape leaves the registry.
func (ed *Editor) DeleteSelected() int {
	ids := ed.sel.Selected()
	if len(ids) == 0 {
		return 0
	}
	ed.sel.PrepareForDelete(ids)
	removed := 0
	for _, id := range ids {
		if ed.reg.Remove(id) {
			removed++
		}
	}
	logging.Info("deleted shapes", "count", removed)
	ed.painter.MarkDirty(LayerShapes)
	return removed
}

func (ed *Editor) ObjectCount() int {
	return ed.reg.Count()
}

func (ed *Editor) CountByCategory() map[Category]int {
	return ed.reg.CountByCategory()
}

// ArmPlacement readies a prototype shape; the next PointerDown stamps a
// copy of it, snapped, at the pointer. Escape disarms.
func (ed *Editor) ArmPlacement(proto *Shape) {
	ed.armed = proto
	logging.Debug("placement armed", "def", proto.DefName, "category", proto.Category)
}

func (ed *Editor) PlacementArmed() bool {
	return ed.armed != nil
}

func (ed *Editor) placeArmed(pt mathgl.Vec2) {
	proto := ed.armed
	ed.armed = nil

	stamped, _ := snap.Point(pt, nil, ed.reg.SnapTargets(nil), ed.snapCtx)
	s := cloneShape(proto)
	s.Pos = mathgl.Vec2{X: stamped.X - s.Width/2, Y: stamped.Y - s.Height/2}
	if len(s.Points) > 0 {
		// Walls arm as a segment around the click point.
		dx := stamped.X - proto.Points[0].X
		dy := stamped.Y - proto.Points[0].Y
		for i := range s.Points {
			s.Points[i].X += dx
			s.Points[i].Y += dy
		}
	}

	added, err := ed.reg.Add(s)
	var dup *DuplicateIdError
	if errors.As(err, &dup) {
		s.Id = NewShapeId()
		added, err = ed.reg.Add(s)
	}
	if err != nil {
		logging.Error("placement failed", "def", proto.DefName, "error", err)
		return
	}
	ed.sel.Select(added.Id, false)
	ed.painter.MarkDirty(LayerShapes)
}

// AddShape registers a shape directly, the way scripts and loaders do
// when there is no pointer involved.
func (ed *Editor) AddShape(s *Shape) (*Shape, error) {
	added, err := ed.reg.Add(s)
	if err != nil {
		return nil, err
	}
	ed.painter.MarkDirty(LayerShapes)
	return added, nil
}

func cloneShape(proto *Shape) *Shape {
	s := &Shape{
		Id:         proto.Id,
		Category:   proto.Category,
		DefName:    proto.DefName,
		Pos:        proto.Pos,
		Width:      proto.Width,
		Height:     proto.Height,
		Rotation:   proto.Rotation,
		Selectable: proto.Selectable,
		Style:      proto.Style,
	}
	if len(proto.Points) > 0 {
		s.Points = make([]mathgl.Vec2, len(proto.Points))
		copy(s.Points, proto.Points)
	}
	return s
}

// Snap configuration, exposed for the panel and scripts.

func (ed *Editor) SetGridPitch(pitch float32) {
	if pitch <= 0 {
		logging.Warn("ignoring non-positive grid pitch", "pitch", pitch)
		return
	}
	ed.snapCtx.GridPitch = pitch
	ed.painter.MarkDirty(LayerShapes)
}

func (ed *Editor) SetGridSnapEnabled(on bool) {
	ed.snapCtx.GridEnabled = on
}

func (ed *Editor) SetObjectSnapEnabled(on bool) {
	ed.snapCtx.ObjectSnapEnabled = on
}

func (ed *Editor) SetSnapThreshold(threshold float32) {
	if threshold < 0 {
		logging.Warn("ignoring negative snap threshold", "threshold", threshold)
		return
	}
	ed.snapCtx.Threshold = threshold
}
