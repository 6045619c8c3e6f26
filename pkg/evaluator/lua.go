package evaluator

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// Lua runs the source as a Lua chunk and returns the value of its return statement.
//
//	return { template = "page.njk", title = "Hi" }
//
// Each evaluation gets its own state with the base, table, string and math libraries. File loading functions are
// removed from the base library. The label is exposed to the chunk as the global path.
type Lua struct{}

var luaLibs = []struct {
	name string
	fn   lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

func newLuaState() (*lua.LState, error) {
	state := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range luaLibs {
		err := state.CallByParam(lua.P{
			Fn:      state.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name))
		if err != nil {
			state.Close()

			return nil, errors.Wrapf(err, "unable to open lua library %q", lib.name)
		}
	}

	for _, name := range []string{"dofile", "loadfile"} {
		state.SetGlobal(name, lua.LNil)
	}

	return state, nil
}

func (Lua) Evaluate(_ context.Context, source, label string) (any, error) {
	state, err := newLuaState()
	if err != nil {
		return nil, err
	}
	defer state.Close()

	state.SetGlobal("path", lua.LString(label))

	chunk, err := state.Load(strings.NewReader(source), label)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load lua chunk %s", label)
	}

	state.Push(chunk)

	err = state.PCall(0, 1, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to run lua chunk %s", label)
	}

	ret := state.Get(-1)
	state.Pop(1)

	return fromLua(ret), nil
}

func fromLua(value lua.LValue) any {
	switch val := value.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return normalizeFloat(float64(val))
	case lua.LString:
		return string(val)
	case *lua.LTable:
		return fromLuaTable(val)
	default:
		if value == lua.LNil {
			return nil
		}

		return value.String()
	}
}

// fromLuaTable returns a []any for sequences and a map[string]any otherwise.
func fromLuaTable(table *lua.LTable) any {
	size := 0
	table.ForEach(func(lua.LValue, lua.LValue) { size++ })

	if n := table.MaxN(); n > 0 && n == size {
		list := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			list = append(list, fromLua(table.RawGetInt(i)))
		}

		return list
	}

	res := make(map[string]any, size)
	table.ForEach(func(key, value lua.LValue) {
		res[key.String()] = fromLua(value)
	})

	return res
}
