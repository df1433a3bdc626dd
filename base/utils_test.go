package base_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/floorworks/planedit/base"
	. "github.com/smartystreets/goconvey/convey"
)

type pathHolder struct {
	Icon base.Path
}

func UtilsSpec() {
	base.SetDatadir("testdata")

	Convey("Path values marshal relative to the datadir", func() {
		holder := pathHolder{
			Icon: base.Path(filepath.Join("testdata", "icons", "rack.png")),
		}
		data, err := json.Marshal(holder)
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, `"icons/rack.png"`)

		Convey("and unmarshal back under the datadir", func() {
			var back pathHolder
			So(json.Unmarshal(data, &back), ShouldBeNil)
			So(back.Icon.String(), ShouldEqual, filepath.Join("testdata", "icons", "rack.png"))
		})
	})

	Convey("SaveJson/LoadJson round-trip", func() {
		type doc struct {
			Name  string
			Count int
		}
		path := filepath.Join(t_dir, "doc.json")
		So(base.SaveJson(path, doc{Name: "aisle", Count: 3}), ShouldBeNil)

		var back doc
		So(base.LoadJson(path, &back), ShouldBeNil)
		So(back, ShouldResemble, doc{Name: "aisle", Count: 3})
	})

	Convey("LoadJson reports missing files", func() {
		var target map[string]string
		So(base.LoadJson(filepath.Join(t_dir, "nope.json"), &target), ShouldNotBeNil)
	})

	Convey("TryRelative", func() {
		So(base.TryRelative("a/b", "a/b/c/d"), ShouldEqual, filepath.Join("c", "d"))
		Convey("falls back to the target when bases don't mix", func() {
			So(base.TryRelative("relative/dir", string(filepath.Separator)+"abs"), ShouldEqual, string(filepath.Separator)+"abs")
		})
	})
}

var t_dir string

func TestUtils(t *testing.T) {
	t_dir = t.TempDir()
	Convey("base utils specification", t, UtilsSpec)
}
