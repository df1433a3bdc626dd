package console

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/floorworks/planedit/base"
	"github.com/go-gl-legacy/gl"
	"github.com/runningwild/glop/gin"
	"github.com/runningwild/glop/gui"
)

const maxLines = 25
const maxLineLength = 150

// CommandRunner executes one console command. The Lua engine satisfies
// this.
type CommandRunner interface {
	RunString(cmd string) error
}

// Console tails the log stream and accepts Lua commands while focused.
// Toggling focus is bound to the "console" key bind.
type Console struct {
	gui.BasicZone
	lines      [maxLines]string
	start, end int
	xscroll    int

	input  *bufio.Reader
	runner CommandRunner
	cmd    []byte
}

func MakeConsole(rdr io.Reader) *Console {
	var c Console
	c.BasicZone.Ex = true
	c.BasicZone.Ey = true
	c.BasicZone.Request_dims = gui.Dims{Dx: 1000, Dy: 1000}
	c.input = bufio.NewReader(rdr)
	return &c
}

func (c *Console) String() string {
	return "console"
}

// SetCommandRunner wires the Lua engine in. Without one, entered commands
// only echo.
func (c *Console) SetCommandRunner(runner CommandRunner) {
	c.runner = runner
}

func (c *Console) append(line string) {
	if len(line) > maxLineLength {
		line = line[:maxLineLength]
	}
	c.lines[c.end] = line
	c.end = (c.end + 1) % len(c.lines)
	if c.start == c.end {
		c.start = (c.start + 1) % len(c.lines)
	}
}

// Tail returns the buffered lines, oldest first.
func (c *Console) Tail() []string {
	var ret []string
	if c.start > c.end {
		for i := c.start; i < len(c.lines); i++ {
			ret = append(ret, c.lines[i])
		}
		for i := 0; i < c.end; i++ {
			ret = append(ret, c.lines[i])
		}
		return ret
	}
	for i := c.start; i < c.end; i++ {
		ret = append(ret, c.lines[i])
	}
	return ret
}

func (c *Console) Think(ui *gui.Gui, dt int64) {
	for line, _, err := c.input.ReadLine(); err == nil; line, _, err = c.input.ReadLine() {
		c.append(string(line))
	}
}

func (c *Console) runCommand() {
	cmd := string(c.cmd)
	c.cmd = c.cmd[0:0]
	if strings.TrimSpace(cmd) == "" {
		return
	}
	c.append("> " + cmd)
	if c.runner == nil {
		c.append("no command runner attached")
		return
	}
	if err := c.runner.RunString(cmd); err != nil {
		c.append(err.Error())
	}
}

func (c *Console) Respond(ui *gui.Gui, group gui.EventGroup) bool {
	if group.IsPressed(base.GetDefaultKeyMap()["console"].Id()) {
		if group.DispatchedToFocussedWidget {
			ui.DropFocus()
		} else {
			ui.TakeFocus(c)
		}
		return true
	}
	if !group.DispatchedToFocussedWidget {
		return false
	}
	if group.IsPressed(gin.AnyLeft) {
		c.xscroll += 250
	}
	if group.IsPressed(gin.AnyRight) {
		c.xscroll -= 250
	}
	if c.xscroll > 0 {
		c.xscroll = 0
	}
	if group.IsPressed(gin.AnyReturn) {
		c.runCommand()
		return true
	}
	if group.IsPressed(gin.AnyBackspace) {
		if len(c.cmd) > 0 {
			c.cmd = c.cmd[:len(c.cmd)-1]
		}
		return true
	}

	if group.PrimaryEvent().IsPress() {
		r := rune(group.PrimaryEvent().Key.Id().Index)
		if r < 256 && (unicode.IsPrint(r) || r == ' ') {
			if gin.In().GetKeyById(gin.AnyLeftShift).IsDown() || gin.In().GetKeyById(gin.AnyRightShift).IsDown() {
				r = unicode.ToUpper(r)
			}
			c.cmd = append(c.cmd, byte(r))
		}
	}

	return true
}

func (c *Console) Draw(region gui.Region, ctx gui.DrawingContext) {
}

func (c *Console) DrawFocused(region gui.Region, ctx gui.DrawingContext) {
	dict := ctx.GetDictionary("standard_18")
	gl.Color4d(0.2, 0, 0.3, 0.8)
	gl.Disable(gl.TEXTURE_2D)
	gl.Begin(gl.QUADS)
	gl.Vertex2i(region.X, region.Y)
	gl.Vertex2i(region.X, region.Y+region.Dy)
	gl.Vertex2i(region.X+region.Dx, region.Y+region.Dy)
	gl.Vertex2i(region.X+region.Dx, region.Y)
	gl.End()
	gl.Color4d(1, 1, 1, 1)
	y := region.Y + (len(c.lines)+1)*dict.MaxHeight()
	do_color := func(line string) {
		gl.Color4d(1, 1, 1, 1)
		if strings.Contains(line, "WARN") {
			gl.Color4d(1, 1, 0, 1)
		}
		if strings.Contains(line, "ERROR") {
			gl.Color4d(1, 0, 0, 1)
		}
	}
	shaderBank := ctx.GetShaders("glop.font")
	for _, line := range c.Tail() {
		do_color(line)
		dict.RenderString(line, gui.Point{X: c.xscroll, Y: y}, dict.MaxHeight(), gui.Left, shaderBank)
		y -= dict.MaxHeight()
	}
	gl.Color4d(0.6, 1, 0.6, 1)
	dict.RenderString("> "+string(c.cmd), gui.Point{X: c.xscroll, Y: y}, dict.MaxHeight(), gui.Left, shaderBank)
}
