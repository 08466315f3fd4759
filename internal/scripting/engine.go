package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	coresys "github.com/ecsbridge/ecsbridge/internal/core/system"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM whose scripts register per-phase
// systems on a Scheduler. Single-goroutine access only (frame loop).
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	sched *coresys.Scheduler

	// handle string → scheduler handle, for remove_system and Close
	systems map[string]coresys.Handle
}

// NewEngine creates a VM with the ecs API installed. Scripts are loaded
// separately with LoadDir or DoString.
func NewEngine(sched *coresys.Scheduler, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:      vm,
		log:     log,
		sched:   sched,
		systems: make(map[string]coresys.Handle),
	}
	e.installAPI()
	return e
}

// LoadDir runs every .lua file in dir in name order. A missing dir is not
// an error.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read scripts %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("run lua chunk: %w", err)
	}
	return nil
}

// Systems returns the number of script-registered systems.
func (e *Engine) Systems() int { return len(e.systems) }

// Close unregisters every scripted system and closes the VM.
func (e *Engine) Close() {
	for key, h := range e.systems {
		e.sched.Remove(h)
		delete(e.systems, key)
	}
	e.vm.Close()
}

func (e *Engine) installAPI() {
	e.vm.SetGlobal("register_system", e.vm.NewFunction(e.luaRegisterSystem))
	e.vm.SetGlobal("remove_system", e.vm.NewFunction(e.luaRemoveSystem))
	e.vm.SetGlobal("log", e.vm.NewFunction(e.luaLog))

	mod := e.vm.NewTable()
	e.vm.SetFuncs(mod, map[string]lua.LGFunction{
		"entities":     e.luaEntities,
		"find":         e.luaFind,
		"get_location": e.luaGetLocation,
		"set_location": e.luaSetLocation,
		"get_velocity": e.luaGetVelocity,
		"set_velocity": e.luaSetVelocity,
	})
	e.vm.SetGlobal("ecs", mod)
}

// register_system(phase, interval_seconds, fn) -> handle
func (e *Engine) luaRegisterSystem(L *lua.LState) int {
	phase, err := coresys.ParsePhase(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	interval := time.Duration(float64(L.CheckNumber(2)) * float64(time.Second))
	fn := L.CheckFunction(3)

	h := e.sched.AddNamed(phase, "lua:"+sourceName(fn), coresys.Every(interval, func(dt time.Duration, _ *ecs.Store) {
		e.callSystem(fn, dt)
	}))
	e.systems[h.String()] = h
	L.Push(lua.LString(h.String()))
	return 1
}

// remove_system(handle) -> bool
func (e *Engine) luaRemoveSystem(L *lua.LState) int {
	key := L.CheckString(1)
	h, ok := e.systems[key]
	if ok {
		delete(e.systems, key)
		ok = e.sched.Remove(h)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// callSystem runs a scripted system. Script errors are logged, the frame
// goes on.
func (e *Engine) callSystem(fn *lua.LFunction, dt time.Duration) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(dt.Seconds())); err != nil {
		e.log.Error("lua system error", zap.String("source", sourceName(fn)), zap.Error(err))
	}
}

func sourceName(fn *lua.LFunction) string {
	if fn.IsG || fn.Proto == nil {
		return "go"
	}
	return fn.Proto.SourceName
}
