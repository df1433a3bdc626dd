package snap_test

import (
	"testing"

	"github.com/MobRulesGames/mathgl"
	"github.com/floorworks/planedit/plan/snap"
	. "github.com/smartystreets/goconvey/convey"
)

func GivenTarget(id string, seq int, x1, y1, x2, y2 float32) snap.Target {
	return snap.Target{
		Id:  id,
		Seq: seq,
		Min: mathgl.Vec2{X: x1, Y: y1},
		Max: mathgl.Vec2{X: x2, Y: y2},
	}
}

func AlignmentSpec() {
	ctx := snap.MakeContext()
	ctx.GridEnabled = false

	Convey("an edge within the threshold attracts", func() {
		idx := snap.MakeIndex([]snap.Target{
			GivenTarget("rack-1", 0, 100, 0, 140, 40),
		})
		pt, results := idx.Point(mathgl.Vec2{X: 103, Y: 55}, ctx)
		So(pt.X, ShouldEqual, 100)
		So(results[0].Kind, ShouldEqual, snap.KindEdge)
		So(results[0].TargetId, ShouldEqual, "rack-1")

		Convey("while the other axis stays raw", func() {
			So(pt.Y, ShouldEqual, 55)
			So(results[1].Snapped, ShouldBeFalse)
		})
	})

	Convey("centers attract too", func() {
		idx := snap.MakeIndex([]snap.Target{
			GivenTarget("rack-1", 0, 100, 0, 140, 40),
		})
		pt, results := idx.Point(mathgl.Vec2{X: 118, Y: 0}, ctx)
		So(pt.X, ShouldEqual, 120)
		So(results[0].Kind, ShouldEqual, snap.KindCenter)
	})

	Convey("at equal distance an edge beats a center", func() {
		idx := snap.MakeIndex([]snap.Target{
			GivenTarget("wide", 0, 100, 0, 120, 10),  // center at 110
			GivenTarget("tall", 1, 110, 50, 150, 90), // edge at 110
		})
		_, results := idx.Point(mathgl.Vec2{X: 112, Y: 200}, ctx)
		So(results[0].Value, ShouldEqual, 110)
		So(results[0].Kind, ShouldEqual, snap.KindEdge)
		So(results[0].TargetId, ShouldEqual, "tall")
	})

	Convey("at equal distance and kind, earlier registration wins", func() {
		idx := snap.MakeIndex([]snap.Target{
			GivenTarget("first", 0, 60, 0, 100, 10),
			GivenTarget("second", 1, 110, 0, 150, 10),
		})
		_, results := idx.Point(mathgl.Vec2{X: 105, Y: 200}, ctx)
		So(results[0].Value, ShouldEqual, 100)
		So(results[0].TargetId, ShouldEqual, "first")
	})

	Convey("an object tie beats the grid line underneath it", func() {
		ctx := ctx
		ctx.GridEnabled = true
		idx := snap.MakeIndex([]snap.Target{
			GivenTarget("rack-1", 0, 100, 0, 140, 40),
		})
		_, results := idx.Point(mathgl.Vec2{X: 104, Y: 300}, ctx)
		So(results[0].Value, ShouldEqual, 100)
		So(results[0].Kind, ShouldEqual, snap.KindEdge)
		So(results[0].TargetId, ShouldEqual, "rack-1")

		Convey("but the grid still takes axes objects can't reach", func() {
			So(results[1].Kind, ShouldEqual, snap.KindGrid)
			So(results[1].Value, ShouldEqual, 300)
		})
	})

	Convey("nothing within the threshold leaves the value raw", func() {
		idx := snap.MakeIndex([]snap.Target{
			GivenTarget("rack-1", 0, 100, 0, 140, 40),
		})
		pt, results := idx.Point(mathgl.Vec2{X: 60, Y: 60}, ctx)
		So(pt, ShouldResemble, mathgl.Vec2{X: 60, Y: 60})
		So(results[0].Snapped, ShouldBeFalse)
	})

	Convey("excluded shapes don't attract themselves", func() {
		targets := []snap.Target{
			GivenTarget("mover", 0, 100, 0, 140, 40),
		}
		pt, _ := snap.Point(mathgl.Vec2{X: 103, Y: 3}, map[string]bool{"mover": true}, targets, ctx)
		So(pt.X, ShouldEqual, 103)
	})

	Convey("guides join the moving bounds to the match", func() {
		idx := snap.MakeIndex([]snap.Target{
			GivenTarget("rack-1", 0, 100, 0, 140, 40),
		})
		movingMin := mathgl.Vec2{X: 95, Y: 60}
		movingMax := mathgl.Vec2{X: 115, Y: 80}
		_, results := idx.Point(mathgl.Vec2{X: 98, Y: 300}, ctx)
		guides := idx.GuidesFor(movingMin, movingMax, results)

		So(len(guides), ShouldEqual, 1)
		So(guides[0].Axis, ShouldEqual, snap.AxisX)
		So(guides[0].Value, ShouldEqual, 100)
		So(guides[0].From, ShouldEqual, 0)
		So(guides[0].To, ShouldEqual, 80)
	})
}

func TestAlignment(t *testing.T) {
	Convey("alignment guide specification", t, AlignmentSpec)
}
