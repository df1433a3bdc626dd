package layouttests_test

import (
	"os"
	"testing"

	"github.com/floorworks/planedit/plan"
	"github.com/floorworks/planedit/test/layouttests"
	"github.com/smartystreets/goconvey/convey"
)

func TestShippedDefs(t *testing.T) {
	layouttests.IntegrationTest(t, "the shipped def catalog", func(tst layouttests.Tester) {
		cat := tst.Catalog()
		convey.So(cat.Count(), convey.ShouldEqual, 11)
		convey.So(cat.Names(plan.CategoryEquipment), convey.ShouldResemble,
			[]string{"crac-30kw", "pdu-floor", "rack-24u", "rack-42u", "ups-cabinet"})
		convey.So(cat.Names(plan.CategoryWall), convey.ShouldResemble,
			[]string{"exterior-wall", "partition"})
		convey.So(cat.Names(plan.CategoryComponent), convey.ShouldResemble,
			[]string{"cable-tray", "floor-grommet"})
		convey.So(cat.Names(plan.CategoryRoom), convey.ShouldResemble,
			[]string{"office", "server-room"})

		partition, ok := cat.Get(plan.CategoryWall, "partition")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(partition.Length, convey.ShouldEqual, 200)

		rack, ok := cat.Get(plan.CategoryEquipment, "rack-42u")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(rack.Width, convey.ShouldEqual, 60)
		convey.So(rack.Height, convey.ShouldEqual, 120)
		convey.So(rack.Style.FillColor.A, convey.ShouldEqual, 1)
	})
}

func TestExampleRowDocument(t *testing.T) {
	layouttests.IntegrationTest(t, "the example-row document", func(tst layouttests.Tester) {
		ed := tst.Editor()
		convey.So(ed.Load(tst.DataPath("layouts", "example-row.plan")), convey.ShouldBeNil)
		convey.So(ed.LayoutName(), convey.ShouldEqual, "example-row")
		convey.So(ed.ObjectCount(), convey.ShouldEqual, 7)

		counts := ed.CountByCategory()
		convey.So(counts[plan.CategoryEquipment], convey.ShouldEqual, 5)
		convey.So(counts[plan.CategoryRoom], convey.ShouldEqual, 1)
		convey.So(counts[plan.CategoryWall], convey.ShouldEqual, 1)

		// Every def a shipped document references has to resolve against
		// the shipped catalog, or a def rename just broke the samples.
		for _, s := range ed.Registry().All() {
			_, ok := tst.Catalog().Get(s.Category, s.DefName)
			convey.So(ok, convey.ShouldBeTrue)
		}

		rotated := 0
		for _, s := range ed.Registry().ByCategory(plan.CategoryEquipment) {
			if s.Rotation != 0 {
				rotated++
				convey.So(s.Rotation, convey.ShouldEqual, 90)
			}
		}
		convey.So(rotated, convey.ShouldEqual, 1)
	})
}

func TestStarterRowScript(t *testing.T) {
	layouttests.IntegrationTest(t, "the starter-row script", func(tst layouttests.Tester) {
		err := tst.Engine().RunFile(tst.DataPath("scripts", "starter_row.lua"))
		convey.So(err, convey.ShouldBeNil)

		ed := tst.Editor()
		convey.So(ed.LayoutName(), convey.ShouldEqual, "starter-row")
		convey.So(ed.ObjectCount(), convey.ShouldEqual, 7)

		counts := ed.CountByCategory()
		convey.So(counts[plan.CategoryEquipment], convey.ShouldEqual, 5)
		convey.So(counts[plan.CategoryRoom], convey.ShouldEqual, 1)
		convey.So(counts[plan.CategoryWall], convey.ShouldEqual, 1)

		// The script ends with a Save; the document it wrote has to load
		// back clean.
		saved := tst.DataPath("layouts", "starter-row.plan")
		_, err = os.Stat(saved)
		convey.So(err, convey.ShouldBeNil)

		fresh := plan.MakeEditor(nil)
		convey.So(fresh.Load(saved), convey.ShouldBeNil)
		convey.So(fresh.ObjectCount(), convey.ShouldEqual, 7)
		convey.So(fresh.LayoutName(), convey.ShouldEqual, "starter-row")
	})
}
