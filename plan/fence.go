package plan

import (
	"github.com/MobRulesGames/mathgl"
	"github.com/floorworks/planedit/logging"
)

// FenceMode is decided by the horizontal drag direction, the way CAD
// fences work: rightward means Window, leftward means Crossing.
type FenceMode int

const (
	// FenceWindow takes only shapes entirely inside the fence.
	FenceWindow FenceMode = iota
	// FenceCrossing takes everything the fence touches.
	FenceCrossing
)

func (m FenceMode) String() string {
	if m == FenceCrossing {
		return "crossing"
	}
	return "window"
}

// FenceController runs rubber-band selection drags. It stays out of the
// SelectionManager's way until the drag ends, then commits all hits in one
// notification.
type FenceController struct {
	reg     *ShapeRegistry
	sel     *SelectionManager
	painter SurfacePainter

	active     bool
	start, cur mathgl.Vec2
}

func MakeFenceController(reg *ShapeRegistry, sel *SelectionManager, painter SurfacePainter) *FenceController {
	if painter == nil {
		painter = NoopPainter()
	}
	return &FenceController{reg: reg, sel: sel, painter: painter}
}

func (fc *FenceController) Active() bool {
	return fc.active
}

// Rect is the fence rectangle so far, normalized.
func (fc *FenceController) Rect() Rect {
	return MakeRect(fc.start, fc.cur)
}

// Mode reflects the drag direction so far. A drag with no horizontal
// travel counts as Window.
func (fc *FenceController) Mode() FenceMode {
	if fc.cur.X < fc.start.X {
		return FenceCrossing
	}
	return FenceWindow
}

func (fc *FenceController) DragStart(pt mathgl.Vec2) {
	fc.active = true
	fc.start = pt
	fc.cur = pt
	fc.painter.MarkDirty(LayerOverlay)
}

func (fc *FenceController) DragMove(pt mathgl.Vec2) {
	if !fc.active {
		return
	}
	fc.cur = pt
	fc.painter.MarkDirty(LayerOverlay)
}

// DragEnd commits the fence. Without additive the hits replace the current
// selection, and an empty fence clears it.
func (fc *FenceController) DragEnd(pt mathgl.Vec2, additive bool) {
	if !fc.active {
		return
	}
	fc.cur = pt
	hits := fc.hits()
	logging.Debug("fence commits", "mode", fc.Mode(), "hits", hits, "additive", additive)
	fc.active = false
	fc.sel.SelectMany(hits, additive)
	fc.painter.MarkDirty(LayerOverlay)
}

// Cancel abandons the fence without touching the selection.
func (fc *FenceController) Cancel() {
	if !fc.active {
		return
	}
	fc.active = false
	fc.painter.MarkDirty(LayerOverlay)
}

func (fc *FenceController) hits() []string {
	fence := fc.Rect()
	crossing := fc.Mode() == FenceCrossing
	var ids []string
	for _, s := range fc.reg.AllSelectable() {
		bounds := s.AABB()
		if crossing && fence.Intersects(bounds) {
			ids = append(ids, s.Id)
		} else if !crossing && fence.Contains(bounds) {
			ids = append(ids, s.Id)
		}
	}
	return ids
}
