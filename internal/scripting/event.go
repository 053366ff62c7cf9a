package scripting

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

// ErrNoMatchFunction is returned when an event script does not define a
// global match function.
var ErrNoMatchFunction = errors.New("event script must define function match(faces)")

// Event is a compiled Lua predicate over a single roll.
//
// An Event is safe for concurrent use; evaluations are serialized because an
// LState is single-threaded.
type Event struct {
	name  string
	limit int

	mu sync.Mutex
	L  *lua.LState
	fn lua.LValue
}

// Compile loads source into a new sandbox and resolves its match function.
// instLimit bounds every load and evaluation; 0 uses DefaultInstructionLimit.
//
// Postcondition: returns an Event the caller must Close, or an error.
func Compile(name, source string, instLimit int) (*Event, error) {
	L := newSandboxedState()
	registerFaceHelpers(L)

	err := runLimited(L, instLimit, func() error { return L.DoString(source) })
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading event %q: %w", name, err)
	}
	fn := L.GetGlobal("match")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("scripting: event %q: %w", name, ErrNoMatchFunction)
	}
	return &Event{name: name, limit: instLimit, L: L, fn: fn}, nil
}

// Name returns the event name.
func (e *Event) Name() string { return e.name }

// Match calls match(faces) with faces as a 1-based Lua array of numbers and
// strings. The result follows Lua truthiness.
func (e *Event) Match(faces []dice.Face) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	L := e.L
	err := runLimited(L, e.limit, func() error {
		return L.CallByParam(lua.P{Fn: e.fn, NRet: 1, Protect: true}, facesTable(L, faces))
	})
	if err != nil {
		return false, fmt.Errorf("scripting: event %q: %w", e.name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// Close releases the Lua state.
func (e *Event) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.L.Close()
}

func faceValue(f dice.Face) lua.LValue {
	if v, ok := f.Float(); ok {
		return lua.LNumber(v)
	}
	s, _ := f.Text()
	return lua.LString(s)
}

func facesTable(L *lua.LState, faces []dice.Face) *lua.LTable {
	t := L.CreateTable(len(faces), 0)
	for _, f := range faces {
		t.Append(faceValue(f))
	}
	return t
}

// registerFaceHelpers defines the rolls global:
//
//	rolls.count(faces, v)  -- occurrences of v in faces
//	rolls.distinct(faces)  -- number of distinct values in faces
//	rolls.sum(faces)       -- sum of the numeric values in faces
func registerFaceHelpers(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "count", L.NewFunction(func(L *lua.LState) int {
		t := L.CheckTable(1)
		v := L.CheckAny(2)
		n := 0
		t.ForEach(func(_, x lua.LValue) {
			if L.Equal(x, v) {
				n++
			}
		})
		L.Push(lua.LNumber(n))
		return 1
	}))
	L.SetField(mod, "distinct", L.NewFunction(func(L *lua.LState) int {
		t := L.CheckTable(1)
		seen := make(map[lua.LValue]struct{})
		t.ForEach(func(_, x lua.LValue) { seen[x] = struct{}{} })
		L.Push(lua.LNumber(len(seen)))
		return 1
	}))
	L.SetField(mod, "sum", L.NewFunction(func(L *lua.LState) int {
		t := L.CheckTable(1)
		var total lua.LNumber
		t.ForEach(func(_, x lua.LValue) {
			if n, ok := x.(lua.LNumber); ok {
				total += n
			}
		})
		L.Push(total)
		return 1
	}))
	L.SetGlobal("rolls", mod)
}
