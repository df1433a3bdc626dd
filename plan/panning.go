package plan

import (
	"github.com/runningwild/glop/gin"
	"github.com/runningwild/glop/gui"
)

type panState struct {
	on     bool
	refpos gui.Point
	focus  struct {
		X, Y float32
	}
}

type pannable interface {
	GetFocus() (float32, float32)
	SetFocusTarget(float32, float32)
	WindowToPlan(int, int) (float32, float32)
}

func (ps *panState) panToggle(pan pannable, group gui.EventGroup) {
	if ps.on {
		if group.PrimaryEvent().IsPress() {
			// keep panning
		} else {
			ps.on = false
		}
	} else {
		if group.PrimaryEvent().IsPress() {
			ps.on = true
			ps.refpos = group.GetMousePosition()
			ps.focus.X, ps.focus.Y = pan.GetFocus()
		}
	}
}

func (ps *panState) panUpdate(pan pannable, group gui.EventGroup) {
	if !ps.on {
		return
	}

	screenMousePos := group.GetMousePosition()

	// Move the focus so that the plan point under the cursor at pan-start
	// stays pinned to the cursor.
	startx, starty := pan.WindowToPlan(ps.refpos.X, ps.refpos.Y)
	curx, cury := pan.WindowToPlan(screenMousePos.X, screenMousePos.Y)

	deltax := curx - startx
	deltay := cury - starty

	pan.SetFocusTarget(ps.focus.X-deltax, ps.focus.Y-deltay)
}

// HandleEventGroup starts or stops a pan on any of the given buttons and
// feeds mouse motion into an active pan. Reports whether the group was
// consumed.
func (ps *panState) HandleEventGroup(pan pannable, group gui.EventGroup, buttons ...gin.KeyId) bool {
	for _, button := range buttons {
		if button.Contains(group.PrimaryEvent().Key.Id()) {
			ps.panToggle(pan, group)
			return true
		}
	}
	if group.IsMouseMove() {
		ps.panUpdate(pan, group)
		return ps.on
	}
	return false
}
