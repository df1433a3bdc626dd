package plan_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/floorworks/planedit/plan"
	"github.com/floorworks/planedit/plan/plantest"
)

func TestSelectionStyler(t *testing.T) {
	Convey("SelectionStyler", t, func() {
		reg := plantest.GivenARegistry()
		rack := plantest.MustAdd(reg, plantest.MakeRack("rack-1", 0, 0, 40, 20))
		wall := plantest.MustAdd(reg, plantest.MakeWall("wall-1", 0, 50, 200, 50))
		painter := &plantest.RecordingPainter{}
		sm := plan.MakeSelectionManager(reg)
		styler := plan.MakeSelectionStyler(reg, painter)
		sm.AddListener(styler.OnSelectionChanged)

		rackOriginal := rack.Style
		wallOriginal := wall.Style

		Convey("filled shapes get an accent border and a tinted fill", func() {
			sm.Select("rack-1", false)
			So(rack.Style.StrokeWidth, ShouldEqual, rackOriginal.StrokeWidth+1)
			So(rack.Style.StrokeColor, ShouldNotResemble, rackOriginal.StrokeColor)
			So(rack.Style.FillColor, ShouldNotResemble, rackOriginal.FillColor)
			So(rack.Style.FillColor.A, ShouldEqual, rackOriginal.FillColor.A)
		})

		Convey("walls go dashed and thicker", func() {
			sm.Select("wall-1", false)
			So(wall.Style.Dashed, ShouldBeTrue)
			So(wall.Style.StrokeWidth, ShouldEqual, wallOriginal.StrokeWidth+2)
		})

		Convey("deselect restores the exact original style", func() {
			sm.Select("rack-1", false)
			sm.Select("wall-1", true)
			sm.DeselectAll()
			So(rack.Style, ShouldResemble, rackOriginal)
			So(wall.Style, ShouldResemble, wallOriginal)
		})

		Convey("replacing the selection restores the shape that left", func() {
			sm.Select("rack-1", false)
			sm.Select("wall-1", false)
			So(rack.Style, ShouldResemble, rackOriginal)
			So(wall.Style.Dashed, ShouldBeTrue)
		})

		Convey("reapplying keeps the first snapshot", func() {
			styler.OnSelectionChanged(nil, []string{"rack-1"})
			styler.OnSelectionChanged(nil, []string{"rack-1"})
			So(rack.Style.StrokeWidth, ShouldEqual, rackOriginal.StrokeWidth+1)

			styler.OnSelectionChanged([]string{"rack-1"}, nil)
			So(rack.Style, ShouldResemble, rackOriginal)
		})

		Convey("a shape deleted while selected doesn't break restore", func() {
			sm.Select("rack-1", false)
			reg.Remove("rack-1")
			So(sm.DeselectAll, ShouldNotPanic)
		})

		Convey("marks the shapes layer dirty only when membership changed", func() {
			sm.Select("rack-1", false)
			So(painter.CountMarks(plan.LayerShapes), ShouldEqual, 1)

			sm.Select("rack-1", true)
			So(painter.CountMarks(plan.LayerShapes), ShouldEqual, 1)

			styler.OnSelectionChanged([]string{"rack-1"}, []string{"rack-1"})
			So(painter.CountMarks(plan.LayerShapes), ShouldEqual, 1)
		})
	})
}
