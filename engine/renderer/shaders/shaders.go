package shaders

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
)

const (
	SHADER_CHECKER = "checker"
	SHADER_NORMAL  = "normal"
	SHADER_FLAT    = "flat"
	SHADER_LUA     = "lua"
)

// Names lists the shaders New understands.
func Names() []string {
	return []string{SHADER_CHECKER, SHADER_NORMAL, SHADER_FLAT, SHADER_LUA}
}

// Options carries the settings every shader variant may draw from.
type Options struct {
	Primary   metadata.Color
	Secondary *metadata.Color
	Frequency float32
	Light     math.Vec3
	Ambient   float32
	// ScriptPath is read for the lua shader.
	ScriptPath string
}

// New builds the shader called name.
func New(name string, opts Options) (metadata.Shader, error) {
	switch strings.ToLower(name) {
	case SHADER_CHECKER, "":
		s := NewCheckerShader(opts.Primary)
		if opts.Secondary != nil {
			s.Secondary = *opts.Secondary
		}
		if opts.Frequency > 0 {
			s.Frequency = opts.Frequency
		}
		return s, nil
	case SHADER_NORMAL:
		return NewNormalShader(), nil
	case SHADER_FLAT:
		return NewFlatShader(opts.Primary, opts.Light, opts.Ambient), nil
	case SHADER_LUA:
		if opts.ScriptPath == "" {
			return nil, fmt.Errorf("lua shader needs a script: %w", core.ErrInvalidConfig)
		}
		return LoadLuaShader(opts.ScriptPath)
	}
	return nil, fmt.Errorf("unknown shader %q (want one of %s): %w", name, strings.Join(Names(), ", "), core.ErrInvalidConfig)
}
