package console_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/floorworks/planedit/console"
	"github.com/floorworks/planedit/logging"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConsoleTailsItsInput(t *testing.T) {
	Convey("ConsoleSpecs", t, func() {
		Convey("buffered lines come back oldest first", func() {
			c := console.MakeConsole(strings.NewReader("first\nsecond\nthird\n"))
			c.Think(nil, 0)
			So(c.Tail(), ShouldResemble, []string{"first", "second", "third"})
		})

		Convey("old lines fall off once the buffer is full", func() {
			var b strings.Builder
			for i := 0; i < 40; i++ {
				fmt.Fprintf(&b, "line-%d\n", i)
			}
			c := console.MakeConsole(strings.NewReader(b.String()))
			c.Think(nil, 0)

			tail := c.Tail()
			So(tail[0], ShouldNotEqual, "line-0")
			So(tail[len(tail)-1], ShouldEqual, "line-39")
		})

		Convey("overlong lines are clipped", func() {
			c := console.MakeConsole(strings.NewReader(strings.Repeat("x", 500) + "\n"))
			c.Think(nil, 0)

			tail := c.Tail()
			So(tail, ShouldHaveLength, 1)
			So(len(tail[0]), ShouldBeLessThan, 500)
		})

		Convey("log lines written after startup show up next frame", func() {
			spy := logging.RedirectOutput(io.Discard)
			c := console.MakeConsole(spy)
			c.Think(nil, 0)
			logging.Info("tail me")
			c.Think(nil, 16)

			found := false
			for _, line := range c.Tail() {
				if strings.Contains(line, "tail me") {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}
