package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/math"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
	"github.com/spaghettifunk/halfblock/engine/renderer/shaders"
	"github.com/spaghettifunk/halfblock/engine/renderer/terminal"
	"github.com/spaghettifunk/halfblock/engine/systems"
)

// ApplicationConfig holds everything the frame driver needs to set up the
// scene. Zero Width or Height means "fit the terminal".
type ApplicationConfig struct {
	// The application name used in logs.
	Name string `toml:"name" yaml:"name"`
	// Stock mesh to render, cube or torus.
	Mesh string `toml:"mesh" yaml:"mesh"`
	// Framebuffer size in pixels. Height must be even.
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	Eye    [3]float32 `toml:"eye" yaml:"eye"`
	Target [3]float32 `toml:"target" yaml:"target"`
	Up     [3]float32 `toml:"up" yaml:"up"`
	// Vertical field of view in degrees.
	FOV  float32 `toml:"fov" yaml:"fov"`
	Near float32 `toml:"near" yaml:"near"`
	Far  float32 `toml:"far" yaml:"far"`

	// Time for half a turn, in milliseconds. Zero stops that axis.
	SpinYPeriodMS float32 `toml:"spin_y_ms" yaml:"spin_y_ms"`
	SpinXPeriodMS float32 `toml:"spin_x_ms" yaml:"spin_x_ms"`

	Shader     string     `toml:"shader" yaml:"shader"`
	Primary    string     `toml:"primary" yaml:"primary"`
	Secondary  string     `toml:"secondary" yaml:"secondary"`
	Frequency  float32    `toml:"frequency" yaml:"frequency"`
	Light      [3]float32 `toml:"light" yaml:"light"`
	Ambient    float32    `toml:"ambient" yaml:"ambient"`
	ScriptPath string     `toml:"script" yaml:"script"`

	ColorMode  string `toml:"color_mode" yaml:"color_mode"`
	CullMode   string `toml:"cull" yaml:"cull"`
	Workers    int    `toml:"workers" yaml:"workers"`
	StatusLine bool   `toml:"status_line" yaml:"status_line"`
	// Zero renders as fast as the host allows.
	TargetFPS int `toml:"target_fps" yaml:"target_fps"`

	LogLevel string `toml:"log_level" yaml:"log_level"`
	LogFile  string `toml:"log_file" yaml:"log_file"`
}

// DefaultApplicationConfig is the tumbling checkered cube.
func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:          "halfblock",
		Mesh:          systems.MESH_CUBE,
		Width:         64,
		Height:        64,
		Eye:           [3]float32{-2.3, 2.3, -2.3},
		Target:        [3]float32{0, 0, 0},
		Up:            [3]float32{0, -1, 0},
		FOV:           70,
		Near:          0.0001,
		Far:           1000,
		SpinYPeriodMS: 1000,
		SpinXPeriodMS: 1700,
		Shader:        shaders.SHADER_CHECKER,
		Primary:       "red",
		Frequency:     2,
		Light:         [3]float32{-1, 1, -0.5},
		Ambient:       0.2,
		ColorMode:     "truecolor",
		CullMode:      "back",
		Workers:       1,
		StatusLine:    true,
		LogLevel:      "info",
	}
}

func vec3(v [3]float32) math.Vec3 {
	return math.NewVec3(v[0], v[1], v[2])
}

// EyeVec, TargetVec and UpVec return the camera vectors.
func (c *ApplicationConfig) EyeVec() math.Vec3    { return vec3(c.Eye) }
func (c *ApplicationConfig) TargetVec() math.Vec3 { return vec3(c.Target) }
func (c *ApplicationConfig) UpVec() math.Vec3     { return vec3(c.Up) }

// FOVRadians converts the configured field of view.
func (c *ApplicationConfig) FOVRadians() float32 {
	return math.DegToRad(c.FOV)
}

// AutoSize reports whether the framebuffer follows the terminal size.
func (c *ApplicationConfig) AutoSize() bool {
	return c.Width == 0 || c.Height == 0
}

// ParseCullMode maps back, front or none onto a FaceCullMode.
func ParseCullMode(s string) (metadata.FaceCullMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "back":
		return metadata.FaceCullModeBack, nil
	case "front":
		return metadata.FaceCullModeFront, nil
	case "none":
		return metadata.FaceCullModeNone, nil
	}
	return metadata.FaceCullModeBack, fmt.Errorf("cull mode %q (want back, front or none): %w", s, core.ErrInvalidConfig)
}

// ShaderOptions resolves the colour names and vectors of the config.
func (c *ApplicationConfig) ShaderOptions() (shaders.Options, error) {
	opts := shaders.Options{
		Frequency:  c.Frequency,
		Light:      vec3(c.Light),
		Ambient:    c.Ambient,
		ScriptPath: c.ScriptPath,
	}
	primary, err := shaders.ParseColor(c.Primary)
	if err != nil {
		return opts, err
	}
	opts.Primary = primary
	if c.Secondary != "" {
		secondary, err := shaders.ParseColor(c.Secondary)
		if err != nil {
			return opts, err
		}
		opts.Secondary = &secondary
	}
	return opts, nil
}

func oneOf(s string, names []string) bool {
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}

// Validate checks every field that can be checked without touching the
// terminal or the filesystem. All problems are reported together.
func (c *ApplicationConfig) Validate() error {
	var errs []error
	invalid := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format+": %w", append(args, core.ErrInvalidConfig)...))
	}

	if c.Width < 0 || c.Height < 0 {
		invalid("size %dx%d is negative", c.Width, c.Height)
	}
	if c.Height%2 != 0 {
		invalid("height %d must be even", c.Height)
	}
	if _, err := math.NewMat4PerspectiveChecked(c.FOVRadians(), 1, c.Near, c.Far); err != nil {
		invalid("projection: %v", err)
	}
	if _, err := math.NewMat4LookAtChecked(c.EyeVec(), c.TargetVec(), c.UpVec()); err != nil {
		invalid("camera: %v", err)
	}
	if c.SpinYPeriodMS < 0 || c.SpinXPeriodMS < 0 {
		invalid("spin periods must not be negative")
	}
	if c.Workers < 0 {
		invalid("workers %d must not be negative", c.Workers)
	}
	if c.TargetFPS < 0 {
		invalid("target_fps %d must not be negative", c.TargetFPS)
	}
	if _, err := c.ShaderOptions(); err != nil {
		errs = append(errs, err)
	}
	if c.Shader != "" && !oneOf(c.Shader, shaders.Names()) {
		invalid("unknown shader %q", c.Shader)
	}
	if c.Mesh != "" && !oneOf(c.Mesh, systems.MeshNames()) {
		invalid("unknown mesh %q", c.Mesh)
	}
	if strings.EqualFold(c.Shader, shaders.SHADER_LUA) && c.ScriptPath == "" {
		invalid("lua shader needs a script")
	}
	if _, err := terminal.ParseColorMode(c.ColorMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseCullMode(c.CullMode); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
