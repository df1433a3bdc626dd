package script

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MobRulesGames/golua/lua"
	"github.com/floorworks/planedit/logging"
)

// luaType names the kinds values a bound function can demand of its
// parameters.
type luaType int

const (
	LuaString luaType = iota
	LuaFloat
	LuaBoolean
	LuaTable

	// a table with numeric fields "x" and "y"
	LuaPoint

	LuaAnything
)

func (t luaType) String() string {
	switch t {
	case LuaString:
		return "string"
	case LuaFloat:
		return "number"
	case LuaBoolean:
		return "boolean"
	case LuaTable:
		return "table"
	case LuaPoint:
		return "point"
	}
	return "anything"
}

// FunctionTable maps a binding name to a thunk that pushes the actual
// function onto the stack.
type FunctionTable map[string]func()

// LuaPushSmartFunctionTable leaves a metatable on the stack whose __index
// resolves names through ft and complains, with the full list of valid
// names, when a script asks for a binding that does not exist.
func LuaPushSmartFunctionTable(L *lua.State, ft FunctionTable) {
	names := make([]string, 0, len(ft))
	for name := range ft {
		names = append(names, name)
	}
	sort.Strings(names)
	valid := strings.Join(names, ", ")

	L.NewTable()
	L.PushString("__index")
	L.PushGoFunction(func(L *lua.State) int {
		name := L.ToString(-1)
		fn, ok := ft[name]
		if !ok {
			LuaDoError(L, fmt.Sprintf("'%s' is not a valid function. Valid functions are: %s.", name, valid))
			L.PushNil()
			return 1
		}
		fn()
		return 1
	})
	L.SetTable(-3)
}

// LuaDoError reports a scripting error without unwinding the Lua stack,
// so bindings can bail with 'return 0' afterwards.
func LuaDoError(L *lua.State, err_str string) {
	logging.Error("lua error", "err", err_str)
}

// LuaCheckParamsOk checks the arguments on the stack against the wanted
// types, logging a usage message when they do not line up.
func LuaCheckParamsOk(L *lua.State, name string, params ...luaType) bool {
	fail := func() bool {
		sig := make([]string, len(params))
		for i, p := range params {
			sig[i] = p.String()
		}
		LuaDoError(L, fmt.Sprintf("expected %s(%s)", name, strings.Join(sig, ", ")))
		return false
	}

	if L.GetTop() != len(params) {
		return fail()
	}
	for i, param := range params {
		index := i + 1
		switch param {
		case LuaString:
			if !L.IsString(index) {
				return fail()
			}
		case LuaFloat:
			if !L.IsNumber(index) {
				return fail()
			}
		case LuaBoolean:
			if !L.IsBoolean(index) {
				return fail()
			}
		case LuaTable:
			if !L.IsTable(index) {
				return fail()
			}
		case LuaPoint:
			if !luaIsPoint(L, index) {
				return fail()
			}
		case LuaAnything:
		}
	}
	return true
}

func luaIsPoint(L *lua.State, index int) bool {
	if !L.IsTable(index) {
		return false
	}
	ok := true
	for _, field := range []string{"x", "y"} {
		L.PushString(field)
		L.GetTable(index)
		ok = ok && L.IsNumber(-1)
		L.Pop(1)
	}
	return ok
}

// LuaPushPoint pushes {x=..., y=...}.
func LuaPushPoint(L *lua.State, x, y float32) {
	L.NewTable()
	L.PushString("x")
	L.PushNumber(float64(x))
	L.SetTable(-3)
	L.PushString("y")
	L.PushNumber(float64(y))
	L.SetTable(-3)
}

// LuaToPoint reads a point table. index must be relative to the top of
// the stack, the way bindings address their parameters.
func LuaToPoint(L *lua.State, index int) (float32, float32) {
	L.PushString("x")
	L.GetTable(index - 1)
	x := float32(L.ToNumber(-1))
	L.Pop(1)
	L.PushString("y")
	L.GetTable(index - 1)
	y := float32(L.ToNumber(-1))
	L.Pop(1)
	return x, y
}

// LuaStringifyParam renders one stack slot for the script 'print'
// binding.
func LuaStringifyParam(L *lua.State, index int) string {
	if L.IsTable(index) {
		return "table"
	}
	if L.IsBoolean(index) {
		if L.ToBoolean(index) {
			return "true"
		}
		return "false"
	}
	return L.ToString(index)
}

func registerUtilityFunctions(L *lua.State) {
	L.Register("print", func(L *lua.State) int {
		var res string
		n := L.GetTop()
		for i := -n; i < 0; i++ {
			res += LuaStringifyParam(L, i) + " "
		}
		logging.Info("PlanScript::print", "msg", res)
		return 0
	})
}
