package plan_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/floorworks/planedit/plan"
	"github.com/floorworks/planedit/plan/plantest"
)

type detachFunc func(ids []string)

func (f detachFunc) DetachIfReferencing(ids []string) {
	f(ids)
}

func TestSelectionManager(t *testing.T) {
	Convey("SelectionManager", t, func() {
		reg := plantest.GivenARegistry()
		plantest.MustAdd(reg, plantest.MakeRack("rack-1", 0, 0, 40, 20))
		plantest.MustAdd(reg, plantest.MakeRack("rack-2", 100, 0, 40, 20))
		plantest.MustAdd(reg, plantest.MakeWall("wall-1", 0, 50, 200, 50))
		sm := plan.MakeSelectionManager(reg)

		notifications := 0
		var lastPrev, lastCur []string
		sm.AddListener(func(prev, cur []string) {
			notifications++
			lastPrev, lastCur = prev, cur
		})

		Convey("select replaces by default", func() {
			sm.Select("rack-1", false)
			sm.Select("rack-2", false)
			So(sm.Selected(), ShouldResemble, []string{"rack-2"})
			So(lastPrev, ShouldResemble, []string{"rack-1"})
			So(lastCur, ShouldResemble, []string{"rack-2"})
		})

		Convey("multi select extends in selection order", func() {
			sm.Select("rack-1", false)
			sm.Select("wall-1", true)
			sm.Select("rack-2", true)
			So(sm.Selected(), ShouldResemble, []string{"rack-1", "wall-1", "rack-2"})
			So(sm.Primary(), ShouldEqual, "rack-1")
		})

		Convey("re-selecting the only selected shape keeps one entry", func() {
			sm.Select("rack-1", false)
			sm.Select("rack-1", false)
			So(sm.Size(), ShouldEqual, 1)
			So(sm.IsSelected("rack-1"), ShouldBeTrue)
		})

		Convey("multi re-select makes no noise", func() {
			sm.Select("rack-1", false)
			before := notifications
			sm.Select("rack-1", true)
			So(notifications, ShouldEqual, before)
		})

		Convey("unknown ids are ignored", func() {
			sm.Select("no-such-shape", false)
			sm.Toggle("no-such-shape")
			So(sm.Size(), ShouldEqual, 0)
			So(notifications, ShouldEqual, 0)
		})

		Convey("toggle flips membership and always notifies", func() {
			sm.Toggle("rack-1")
			So(sm.IsSelected("rack-1"), ShouldBeTrue)
			sm.Toggle("rack-1")
			So(sm.IsSelected("rack-1"), ShouldBeFalse)
			So(notifications, ShouldEqual, 2)
		})

		Convey("deselect removes a single id", func() {
			sm.Select("rack-1", false)
			sm.Select("rack-2", true)
			sm.Deselect("rack-1")
			So(sm.Selected(), ShouldResemble, []string{"rack-2"})
		})

		Convey("deselect all", func() {
			Convey("notifies when something was selected", func() {
				sm.Select("rack-1", false)
				before := notifications
				sm.DeselectAll()
				So(sm.Size(), ShouldEqual, 0)
				So(notifications, ShouldEqual, before+1)
				So(lastPrev, ShouldResemble, []string{"rack-1"})
				So(lastCur, ShouldBeEmpty)
			})

			Convey("stays quiet when nothing was", func() {
				sm.DeselectAll()
				So(notifications, ShouldEqual, 0)
			})
		})

		Convey("select many", func() {
			Convey("replaces in a single notification", func() {
				sm.Select("wall-1", false)
				before := notifications
				sm.SelectMany([]string{"rack-1", "rack-2"}, false)
				So(sm.Selected(), ShouldResemble, []string{"rack-1", "rack-2"})
				So(notifications, ShouldEqual, before+1)
			})

			Convey("keeps the old selection when additive", func() {
				sm.Select("wall-1", false)
				sm.SelectMany([]string{"rack-1", "wall-1"}, true)
				So(sm.Selected(), ShouldResemble, []string{"wall-1", "rack-1"})
			})

			Convey("skips unknown ids", func() {
				sm.SelectMany([]string{"rack-1", "bogus", "rack-2"}, false)
				So(sm.Selected(), ShouldResemble, []string{"rack-1", "rack-2"})
			})

			Convey("does nothing for an all-duplicate additive batch", func() {
				sm.Select("rack-1", false)
				before := notifications
				sm.SelectMany([]string{"rack-1"}, true)
				So(notifications, ShouldEqual, before)
			})
		})

		Convey("prepare for delete", func() {
			Convey("detaches handles before touching the selection", func() {
				var events []string
				sm.AddListener(func(prev, cur []string) {
					events = append(events, "selection-changed")
				})
				sm.SetHandleDetacher(detachFunc(func(ids []string) {
					events = append(events, "detach")
				}))
				sm.Select("rack-1", false)
				events = nil
				sm.PrepareForDelete([]string{"rack-1"})
				So(events, ShouldResemble, []string{"detach", "selection-changed"})
			})

			Convey("drops doomed ids and keeps the rest in order", func() {
				sm.Select("rack-1", false)
				sm.Select("wall-1", true)
				sm.Select("rack-2", true)
				sm.PrepareForDelete([]string{"rack-1", "rack-2"})
				So(sm.Selected(), ShouldResemble, []string{"wall-1"})
			})

			Convey("tells the detacher about ids that were never selected", func() {
				detacher := &plantest.RecordingDetacher{}
				sm.SetHandleDetacher(detacher)
				before := notifications
				sm.PrepareForDelete([]string{"rack-2"})
				So(detacher.Calls, ShouldHaveLength, 1)
				So(detacher.Calls[0], ShouldResemble, []string{"rack-2"})
				So(notifications, ShouldEqual, before)
			})
		})
	})
}
