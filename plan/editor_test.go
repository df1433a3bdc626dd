package plan_test

import (
	"testing"

	"github.com/MobRulesGames/mathgl"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/floorworks/planedit/plan"
	"github.com/floorworks/planedit/plan/plantest"
)

func TestEditor(t *testing.T) {
	Convey("Editor", t, func() {
		ed, painter := plantest.GivenAnEditor()
		rack1 := plantest.MustAdd(ed.Registry(), plantest.MakeRack("rack-1", 0, 0, 40, 20))
		plantest.MustAdd(ed.Registry(), plantest.MakeRack("rack-2", 20, 0, 40, 20))

		Convey("clicking picks the topmost shape and attaches handles", func() {
			ed.PointerDown(mathgl.Vec2{X: 25, Y: 10}, false)
			ed.PointerUp(mathgl.Vec2{X: 25, Y: 10}, false)

			So(ed.Selection().Selected(), ShouldResemble, []string{"rack-2"})
			So(ed.Handles().Attached(), ShouldResemble, []string{"rack-2"})
		})

		Convey("selecting the same shape twice keeps one entry", func() {
			ed.Select("rack-1", false)
			ed.Select("rack-1", false)
			So(ed.Selection().Size(), ShouldEqual, 1)
		})

		Convey("click-dragging a shape moves it", func() {
			ed.PointerDown(mathgl.Vec2{X: 10, Y: 10}, false)
			ed.PointerMove(mathgl.Vec2{X: 60, Y: 40})
			ed.PointerUp(mathgl.Vec2{X: 60, Y: 40}, false)

			So(rack1.Pos.X, ShouldEqual, 50)
			So(rack1.Pos.Y, ShouldEqual, 30)
			So(ed.Handles().Transforming(), ShouldBeFalse)
		})

		Convey("escape rolls a drag back", func() {
			ed.PointerDown(mathgl.Vec2{X: 10, Y: 10}, false)
			ed.PointerMove(mathgl.Vec2{X: 60, Y: 40})
			ed.CancelInteraction()

			So(rack1.Pos.X, ShouldEqual, 0)
			So(rack1.Pos.Y, ShouldEqual, 0)
			So(ed.Handles().Transforming(), ShouldBeFalse)
		})

		Convey("modified click toggles membership without starting a drag", func() {
			ed.Select("rack-1", false)
			ed.PointerDown(mathgl.Vec2{X: 10, Y: 10}, true)

			So(ed.Selection().Size(), ShouldEqual, 0)
			So(ed.Handles().Transforming(), ShouldBeFalse)
			So(ed.Handles().Attached(), ShouldBeEmpty)
		})

		Convey("clicking empty space opens a fence", func() {
			Convey("that selects what it encloses", func() {
				ed.PointerDown(mathgl.Vec2{X: -10, Y: -10}, false)
				ed.PointerMove(mathgl.Vec2{X: 30, Y: 15})
				ed.PointerUp(mathgl.Vec2{X: 50, Y: 30}, false)

				So(ed.Selection().Selected(), ShouldResemble, []string{"rack-1"})
				So(ed.Handles().Attached(), ShouldResemble, []string{"rack-1"})
			})

			Convey("and an empty fence clears the selection", func() {
				ed.Select("rack-1", false)
				ed.PointerDown(mathgl.Vec2{X: 200, Y: 200}, false)
				ed.PointerUp(mathgl.Vec2{X: 260, Y: 240}, false)

				So(ed.Selection().Size(), ShouldEqual, 0)
			})
		})

		Convey("deleting the selection", func() {
			ed.Select("rack-1", false)
			ed.Select("rack-2", true)
			removed := ed.DeleteSelected()

			So(removed, ShouldEqual, 2)
			So(ed.ObjectCount(), ShouldEqual, 0)
			So(ed.Selection().Size(), ShouldEqual, 0)
			So(ed.Handles().Attached(), ShouldBeEmpty)
		})

		Convey("deleting nothing is a no-op", func() {
			So(ed.DeleteSelected(), ShouldEqual, 0)
			So(ed.ObjectCount(), ShouldEqual, 2)
		})

		Convey("armed placement stamps a snapped copy on click", func() {
			ed2, _ := plantest.GivenAnEditor()
			proto := plantest.MakeRack("", 0, 0, 40, 20)
			ed2.ArmPlacement(proto)
			So(ed2.PlacementArmed(), ShouldBeTrue)

			ed2.PointerDown(mathgl.Vec2{X: 73, Y: 56}, false)

			So(ed2.PlacementArmed(), ShouldBeFalse)
			So(ed2.ObjectCount(), ShouldEqual, 1)
			placed := ed2.Registry().All()[0]
			So(placed.Pos.X, ShouldEqual, 50)
			So(placed.Pos.Y, ShouldEqual, 50)
			So(placed.Id, ShouldNotBeBlank)
			So(ed2.Selection().Selected(), ShouldResemble, []string{placed.Id})
		})

		Convey("escape disarms a placement", func() {
			ed.ArmPlacement(plantest.MakeRack("", 0, 0, 40, 20))
			ed.CancelInteraction()
			So(ed.PlacementArmed(), ShouldBeFalse)

			ed.PointerDown(mathgl.Vec2{X: 200, Y: 200}, false)
			So(ed.Fence().Active(), ShouldBeTrue)
			So(ed.ObjectCount(), ShouldEqual, 2)
		})

		Convey("export is a deep copy", func() {
			data := ed.ExportLayoutData()
			So(data.Shapes, ShouldHaveLength, 2)

			data.Shapes[0].Pos.X = 999
			So(rack1.Pos.X, ShouldEqual, 0)
		})

		Convey("layouts round-trip", func() {
			ed.SetLayoutName("lab-3f")
			data := ed.ExportLayoutData()

			other, otherPainter := plantest.GivenAnEditor()
			other.LoadLayout(data)

			So(other.LayoutName(), ShouldEqual, "lab-3f")
			So(other.ObjectCount(), ShouldEqual, 2)
			So(other.Registry().Get("rack-1"), ShouldNotBeNil)
			So(other.Registry().Get("rack-2"), ShouldNotBeNil)
			So(otherPainter.CountRedraws(plan.LayerShapes), ShouldEqual, 1)
		})

		Convey("loading a layout with colliding ids keeps both shapes", func() {
			data := &plan.LayoutData{
				Name: "collisions",
				Shapes: []*plan.Shape{
					plantest.MakeRack("twin", 0, 0, 40, 20),
					plantest.MakeRack("twin", 100, 100, 40, 20),
				},
			}
			other, _ := plantest.GivenAnEditor()
			other.LoadLayout(data)

			So(other.ObjectCount(), ShouldEqual, 2)
			all := other.Registry().All()
			So(all[0].Id, ShouldNotEqual, all[1].Id)
		})

		Convey("the whole plan repaints after a load", func() {
			painter.Reset()
			ed.LoadLayout(&plan.LayoutData{Name: "empty"})
			So(painter.CountRedraws(plan.LayerShapes), ShouldEqual, 1)
			So(ed.ObjectCount(), ShouldEqual, 0)
		})
	})
}
