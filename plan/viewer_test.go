package plan_test

import (
	"testing"

	"github.com/floorworks/planedit/plan"
	"github.com/runningwild/glop/gui"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlanViewer(t *testing.T) {
	Convey("PlanViewer", t, func() {
		viewer := plan.MakePlanViewer()
		viewer.Render_region = gui.Region{
			Point: gui.Point{X: 0, Y: 0},
			Dims:  gui.Dims{Dx: 200, Dy: 100},
		}

		Convey("the window centre maps to the focus", func() {
			px, py := viewer.WindowToPlan(100, 50)
			So(px, ShouldAlmostEqual, 0, 1e-3)
			So(py, ShouldAlmostEqual, 0, 1e-3)
		})

		Convey("window offsets shrink by the zoom factor", func() {
			viewer.SetZoom(2)
			px, py := viewer.WindowToPlan(120, 50)
			So(px, ShouldAlmostEqual, 10, 1e-3)
			So(py, ShouldAlmostEqual, 0, 1e-3)
		})

		Convey("PlanToWindow inverts WindowToPlan", func() {
			viewer.SetZoom(2.5)
			px, py := viewer.WindowToPlan(37, 81)
			wx, wy := viewer.PlanToWindow(px, py)
			So(wx, ShouldAlmostEqual, 37, 1)
			So(wy, ShouldAlmostEqual, 81, 1)
		})

		Convey("zoom eases toward its target over time", func() {
			viewer.Think(nil, 0)
			viewer.SetZoomTarget(4)
			viewer.Think(nil, 16)
			partway := viewer.GetZoom()
			So(partway, ShouldBeGreaterThan, 1)
			So(partway, ShouldBeLessThan, 4)
			for tick := int64(32); tick <= 16*400; tick += 16 {
				viewer.Think(nil, tick)
			}
			So(viewer.GetZoom(), ShouldAlmostEqual, 4, 0.01)
		})

		Convey("zoom targets are clamped to sane bounds", func() {
			viewer.Think(nil, 0)
			viewer.SetZoomTarget(1e6)
			for tick := int64(16); tick <= 16*400; tick += 16 {
				viewer.Think(nil, tick)
			}
			So(viewer.GetZoom(), ShouldAlmostEqual, 40, 0.01)
		})

		Convey("rejects a zoom that would draw nothing", func() {
			So(func() { viewer.SetZoom(0) }, ShouldPanic)
		})

		Convey("notices the clock running backwards", func() {
			viewer.Think(nil, 100)
			So(func() { viewer.Think(nil, 50) }, ShouldPanic)
		})

		Convey("shrugs off marks for layers it does not know", func() {
			So(func() { viewer.MarkDirty(plan.Layer(99)) }, ShouldNotPanic)
		})
	})
}
