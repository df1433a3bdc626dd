package plan_test

import (
	"testing"

	"github.com/MobRulesGames/mathgl"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/floorworks/planedit/plan"
	"github.com/floorworks/planedit/plan/plantest"
)

func TestFenceController(t *testing.T) {
	Convey("FenceController", t, func() {
		reg := plantest.GivenARegistry()
		// rack-a sits entirely inside the fence below, rack-b only clips it.
		plantest.MustAdd(reg, plantest.MakeRack("rack-a", 10, 10, 20, 10))
		plantest.MustAdd(reg, plantest.MakeRack("rack-b", 30, 10, 20, 10))
		plantest.MustAdd(reg, plantest.MakeWall("wall-1", 0, 100, 200, 100))
		painter := &plantest.RecordingPainter{}
		sm := plan.MakeSelectionManager(reg)
		fc := plan.MakeFenceController(reg, sm, painter)

		Convey("a rightward drag is a window fence", func() {
			fc.DragStart(mathgl.Vec2{X: 5, Y: 5})
			fc.DragMove(mathgl.Vec2{X: 20, Y: 20})
			So(fc.Mode(), ShouldEqual, plan.FenceWindow)
			fc.DragEnd(mathgl.Vec2{X: 35, Y: 30}, false)

			So(fc.Active(), ShouldBeFalse)
			So(sm.Selected(), ShouldResemble, []string{"rack-a"})
		})

		Convey("a leftward drag is a crossing fence", func() {
			fc.DragStart(mathgl.Vec2{X: 35, Y: 30})
			fc.DragMove(mathgl.Vec2{X: 20, Y: 20})
			So(fc.Mode(), ShouldEqual, plan.FenceCrossing)
			fc.DragEnd(mathgl.Vec2{X: 5, Y: 5}, false)

			So(sm.Selected(), ShouldResemble, []string{"rack-a", "rack-b"})
		})

		Convey("no horizontal travel counts as window", func() {
			sm.Select("rack-b", false)
			fc.DragStart(mathgl.Vec2{X: 70, Y: 5})
			fc.DragMove(mathgl.Vec2{X: 70, Y: 30})
			So(fc.Mode(), ShouldEqual, plan.FenceWindow)
			fc.DragEnd(mathgl.Vec2{X: 70, Y: 30}, false)

			// An empty, non-additive fence clears what was selected.
			So(sm.Selected(), ShouldBeEmpty)
		})

		Convey("additive fences extend the selection", func() {
			sm.Select("wall-1", false)
			fc.DragStart(mathgl.Vec2{X: 5, Y: 5})
			fc.DragEnd(mathgl.Vec2{X: 35, Y: 30}, true)

			So(sm.Selected(), ShouldResemble, []string{"wall-1", "rack-a"})
		})

		Convey("a crossing fence catches walls it touches", func() {
			fc.DragStart(mathgl.Vec2{X: 90, Y: 120})
			fc.DragEnd(mathgl.Vec2{X: 80, Y: 90}, false)

			So(sm.Selected(), ShouldResemble, []string{"wall-1"})
		})

		Convey("cancel leaves the selection alone", func() {
			sm.Select("rack-a", false)
			fc.DragStart(mathgl.Vec2{X: 5, Y: 5})
			fc.DragMove(mathgl.Vec2{X: 60, Y: 60})
			fc.Cancel()

			So(fc.Active(), ShouldBeFalse)
			So(sm.Selected(), ShouldResemble, []string{"rack-a"})
		})

		Convey("the fence lives on the overlay layer", func() {
			fc.DragStart(mathgl.Vec2{X: 5, Y: 5})
			fc.DragMove(mathgl.Vec2{X: 20, Y: 20})
			fc.DragEnd(mathgl.Vec2{X: 35, Y: 30}, false)

			So(painter.CountMarks(plan.LayerOverlay), ShouldEqual, 3)
		})
	})
}
