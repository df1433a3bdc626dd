package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MobRulesGames/golua/lua"
	"github.com/MobRulesGames/mathgl"
	"github.com/floorworks/planedit/base"
	"github.com/floorworks/planedit/logging"
	"github.com/floorworks/planedit/plan"
)

// Engine owns a Lua state with the layout bindings installed under the
// global 'Plan' table. Commands run on the caller's goroutine; both the
// console and the shell's batch flag feed it.
type Engine struct {
	L *lua.State

	editor  *plan.Editor
	catalog *plan.Catalog
}

func MakeEngine(editor *plan.Editor, catalog *plan.Catalog) *Engine {
	e := &Engine{
		editor:  editor,
		catalog: catalog,
	}

	e.L = lua.NewState()
	e.L.OpenLibs()
	e.L.SetExecutionLimit(250000)

	e.L.NewTable()
	LuaPushSmartFunctionTable(e.L, FunctionTable{
		"AddEquipment":     func() { e.L.PushGoFunction(addStamped(e, "AddEquipment", plan.CategoryEquipment)) },
		"AddComponent":     func() { e.L.PushGoFunction(addStamped(e, "AddComponent", plan.CategoryComponent)) },
		"AddRoom":          func() { e.L.PushGoFunction(addStamped(e, "AddRoom", plan.CategoryRoom)) },
		"AddWall":          func() { e.L.PushGoFunction(addWall(e)) },
		"Select":           func() { e.L.PushGoFunction(selectShape(e)) },
		"SelectAll":        func() { e.L.PushGoFunction(selectAll(e)) },
		"DeselectAll":      func() { e.L.PushGoFunction(deselectAll(e)) },
		"DeleteSelected":   func() { e.L.PushGoFunction(deleteSelected(e)) },
		"Counts":           func() { e.L.PushGoFunction(counts(e)) },
		"SetGridPitch":     func() { e.L.PushGoFunction(setGridPitch(e)) },
		"SetGridSnap":      func() { e.L.PushGoFunction(setGridSnap(e)) },
		"SetObjectSnap":    func() { e.L.PushGoFunction(setObjectSnap(e)) },
		"SetSnapThreshold": func() { e.L.PushGoFunction(setSnapThreshold(e)) },
		"SetLayoutName":    func() { e.L.PushGoFunction(setLayoutName(e)) },
		"Save":             func() { e.L.PushGoFunction(saveLayout(e)) },
	})
	e.L.SetMetaTable(-2)
	e.L.SetGlobal("Plan")

	registerUtilityFunctions(e.L)

	return e
}

// RunString executes one command, the console's entry path. The
// execution limit re-arms per run so an earlier long command can't starve
// a later one.
func (e *Engine) RunString(cmd string) error {
	e.L.SetExecutionLimit(250000)
	return e.L.DoString(cmd)
}

// RunFile executes a whole script file, the shell's batch path.
func (e *Engine) RunFile(path string) error {
	prog, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("couldn't read script %q: %w", path, err)
	}
	logging.Info("running layout script", "path", path)
	e.L.SetExecutionLimit(2500000)
	if err := e.L.DoString(string(prog)); err != nil {
		return fmt.Errorf("script %q failed: %w", path, err)
	}
	return nil
}

// addStamped stamps a def of the given category at a point. Lua usage:
// Plan.AddEquipment("rack-42u", {x=120, y=80}). Returns the new shape's
// id.
func addStamped(e *Engine, name string, cat plan.Category) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, name, LuaString, LuaPoint) {
			return 0
		}
		defName := L.ToString(-2)
		x, y := LuaToPoint(L, -1)
		s, err := e.catalog.Stamp(cat, defName)
		if err != nil {
			LuaDoError(L, fmt.Sprintf("%s: %v", name, err))
			return 0
		}
		s.Pos = mathgl.Vec2{X: x, Y: y}
		added, err := e.editor.AddShape(s)
		if err != nil {
			LuaDoError(L, fmt.Sprintf("%s: %v", name, err))
			return 0
		}
		L.PushString(added.Id)
		return 1
	}
}

// addWall runs a wall def between two points. Lua usage:
// Plan.AddWall("partition", {x=0, y=0}, {x=200, y=0}).
func addWall(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "AddWall", LuaString, LuaPoint, LuaPoint) {
			return 0
		}
		defName := L.ToString(-3)
		x1, y1 := LuaToPoint(L, -2)
		x2, y2 := LuaToPoint(L, -1)
		s, err := e.catalog.Stamp(plan.CategoryWall, defName)
		if err != nil {
			LuaDoError(L, fmt.Sprintf("AddWall: %v", err))
			return 0
		}
		s.Points = []mathgl.Vec2{{X: x1, Y: y1}, {X: x2, Y: y2}}
		added, err := e.editor.AddShape(s)
		if err != nil {
			LuaDoError(L, fmt.Sprintf("AddWall: %v", err))
			return 0
		}
		L.PushString(added.Id)
		return 1
	}
}

func selectShape(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "Select", LuaString, LuaBoolean) {
			return 0
		}
		id := L.ToString(-2)
		multi := L.ToBoolean(-1)
		if e.editor.Registry().Get(id) == nil {
			LuaDoError(L, fmt.Sprintf("Select: no shape with id %q", id))
			return 0
		}
		e.editor.Select(id, multi)
		return 0
	}
}

func selectAll(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "SelectAll") {
			return 0
		}
		e.editor.SelectAll()
		return 0
	}
}

func deselectAll(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "DeselectAll") {
			return 0
		}
		e.editor.DeselectAll()
		return 0
	}
}

func deleteSelected(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "DeleteSelected") {
			return 0
		}
		L.PushInteger(int64(e.editor.DeleteSelected()))
		return 1
	}
}

// counts returns {equipment=n, wall=n, room=n, component=n, total=n}.
func counts(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "Counts") {
			return 0
		}
		byCat := e.editor.CountByCategory()
		L.NewTable()
		total := 0
		for cat, n := range byCat {
			total += n
			L.PushString(cat.String())
			L.PushInteger(int64(n))
			L.SetTable(-3)
		}
		L.PushString("total")
		L.PushInteger(int64(total))
		L.SetTable(-3)
		return 1
	}
}

func setGridPitch(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "SetGridPitch", LuaFloat) {
			return 0
		}
		pitch := float32(L.ToNumber(-1))
		if pitch <= 0 {
			LuaDoError(L, fmt.Sprintf("SetGridPitch: pitch must be positive, got %v", pitch))
			return 0
		}
		e.editor.SetGridPitch(pitch)
		return 0
	}
}

func setGridSnap(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "SetGridSnap", LuaBoolean) {
			return 0
		}
		e.editor.SetGridSnapEnabled(L.ToBoolean(-1))
		return 0
	}
}

func setObjectSnap(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "SetObjectSnap", LuaBoolean) {
			return 0
		}
		e.editor.SetObjectSnapEnabled(L.ToBoolean(-1))
		return 0
	}
}

func setSnapThreshold(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "SetSnapThreshold", LuaFloat) {
			return 0
		}
		threshold := float32(L.ToNumber(-1))
		if threshold < 0 {
			LuaDoError(L, fmt.Sprintf("SetSnapThreshold: threshold can't be negative, got %v", threshold))
			return 0
		}
		e.editor.SetSnapThreshold(threshold)
		return 0
	}
}

func setLayoutName(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "SetLayoutName", LuaString) {
			return 0
		}
		e.editor.SetLayoutName(L.ToString(-1))
		return 0
	}
}

// saveLayout writes the layout under the datadir. Lua usage:
// Plan.Save("generated") writes <datadir>/layouts/generated.plan.
func saveLayout(e *Engine) lua.LuaGoFunction {
	return func(L *lua.State) int {
		if !LuaCheckParamsOk(L, "Save", LuaString) {
			return 0
		}
		name := L.ToString(-1)
		if name == "" {
			LuaDoError(L, "Save: the layout needs a name")
			return 0
		}
		path := filepath.Join(base.GetDataDir(), "layouts", name+".plan")
		if err := e.editor.Save(path); err != nil {
			LuaDoError(L, fmt.Sprintf("Save: %v", err))
			return 0
		}
		L.PushString(path)
		return 1
	}
}
