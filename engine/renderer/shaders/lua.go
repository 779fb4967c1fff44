package shaders

import (
	"fmt"
	"os"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	lua "github.com/yuin/gopher-lua"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

const LUA_ENTRY_POINT = "shade"

/**
 * @brief A fragment colour computed by a Lua script. The script defines
 *
 *   function shade(s, t, nx, ny, nz, depth) return r, g, b end
 *
 * with r, g and b in [0, 1]. The global `time` holds the frame time in
 * milliseconds. Calls are serialized, so the shader may be shared between
 * rasterizer bands. A failing call leaves the cell unchanged and is
 * reported by Err.
 */
type LuaShader struct {
	mu    sync.Mutex
	state *lua.LState
	fn    lua.LValue
	err   error
}

// NewLuaShader compiles source and looks up the shade function.
func NewLuaShader(source string) (*LuaShader, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: false})
	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("%v: %w", err, core.ErrShaderScript)
	}
	fn := L.GetGlobal(LUA_ENTRY_POINT)
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("script does not define %s(): %w", LUA_ENTRY_POINT, core.ErrShaderScript)
	}
	L.SetGlobal("time", lua.LNumber(0))
	return &LuaShader{state: L, fn: fn}, nil
}

// LoadLuaShader reads and compiles the script at path.
func LoadLuaShader(path string) (*LuaShader, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shader %s: %w", path, err)
	}
	s, err := NewLuaShader(string(src))
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", path, err)
	}
	return s, nil
}

// SetTime publishes the frame time to the script.
func (l *LuaShader) SetTime(ms float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SetGlobal("time", lua.LNumber(ms))
}

// Err returns the first error raised by the script since the last Reset.
func (l *LuaShader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *LuaShader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = nil
}

func (l *LuaShader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Close()
}

func (l *LuaShader) color(v metadata.Vertex) (metadata.Color, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return metadata.Color{}, false
	}

	L := l.state
	err := L.CallByParam(lua.P{Fn: l.fn, NRet: 3, Protect: true},
		lua.LNumber(v.Texcoord.X), lua.LNumber(v.Texcoord.Y),
		lua.LNumber(v.Normal.X), lua.LNumber(v.Normal.Y), lua.LNumber(v.Normal.Z),
		lua.LNumber(v.Position.Z))
	if err != nil {
		l.err = fmt.Errorf("%v: %w", err, core.ErrShaderScript)
		return metadata.Color{}, false
	}
	r, g, b := L.Get(-3), L.Get(-2), L.Get(-1)
	L.Pop(3)

	channel := func(lv lua.LValue) float64 {
		return math.Clamp(float64(lua.LVAsNumber(lv)), 0, 1)
	}
	return metadata.ColorFromColorful(colorful.Color{R: channel(r), G: channel(g), B: channel(b)}), true
}

func (l *LuaShader) Shade(v metadata.Vertex, cell metadata.Cell, secondRow bool) metadata.Cell {
	c, ok := l.color(v)
	if !ok {
		return cell
	}
	return PackHalfBlock(cell, c, secondRow)
}
