// Package script runs Lua scene routing rules.
package script

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoRouteFunction is returned when a router script does not define next_scenes.
var ErrNoRouteFunction = errors.New("script: next_scenes function not defined")

const routeFunc = "next_scenes"

// Router wraps a gopher-lua VM holding a next_scenes(current) function.
// The VM is not goroutine-safe; calls are serialized so the router may be
// used from the scene loader goroutine.
type Router struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewRouter loads the script source and checks that it defines next_scenes.
func NewRouter(source string, log *zap.Logger) (*Router, error) {
	vm := lua.NewState()
	if err := vm.DoString(source); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load router script: %w", err)
	}
	if vm.GetGlobal(routeFunc).Type() != lua.LTFunction {
		vm.Close()
		return nil, ErrNoRouteFunction
	}
	return &Router{vm: vm, log: log.Named("router")}, nil
}

// NextScenes calls next_scenes with the current scene types.
// ok is false when the script returns nil, meaning it has no rule for current.
func (r *Router) NextScenes(current []string) (next []string, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	arg := r.vm.NewTable()
	for _, c := range current {
		arg.Append(lua.LString(c))
	}

	if err := r.vm.CallByParam(lua.P{
		Fn:      r.vm.GetGlobal(routeFunc),
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		return nil, false, fmt.Errorf("lua %s: %w", routeFunc, err)
	}

	result := r.vm.Get(-1)
	r.vm.Pop(1)

	if result == lua.LNil {
		return nil, false, nil
	}
	tbl, isTable := result.(*lua.LTable)
	if !isTable {
		return nil, false, fmt.Errorf("lua %s returned %s, want table", routeFunc, result.Type())
	}

	next = make([]string, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		s, isString := tbl.RawGetInt(i).(lua.LString)
		if !isString {
			return nil, false, fmt.Errorf("lua %s: element %d is not a string", routeFunc, i)
		}
		next = append(next, string(s))
	}
	r.log.Debug("routed", zap.Strings("current", current), zap.Strings("next", next))
	return next, true, nil
}

// Close releases the Lua VM.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vm.Close()
}
