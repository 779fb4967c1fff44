package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/renderer/metadata"
	"github.com/spaghettifunk/halfblock/engine/renderer/shaders"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultApplicationConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestParseConfigFormats(t *testing.T) {
	tests := []struct {
		ext  string
		data string
	}{
		{".toml", `
shader = "flat"
primary = "#00ff80"
width = 100
height = 40
eye = [0.0, 0.0, 5.0]
up = [0.0, 1.0, 0.0]
spin_y_ms = 2000
`},
		{".yaml", `
shader: flat
primary: "#00ff80"
width: 100
height: 40
eye: [0, 0, 5]
up: [0, 1, 0]
spin_y_ms: 2000
`},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			config, err := ParseConfig([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatal(err)
			}
			if config.Shader != shaders.SHADER_FLAT || config.Width != 100 || config.Height != 40 {
				t.Errorf("config = %+v", config)
			}
			if config.Eye != [3]float32{0, 0, 5} || config.Up != [3]float32{0, 1, 0} {
				t.Errorf("camera = %v %v", config.Eye, config.Up)
			}
			if config.SpinYPeriodMS != 2000 {
				t.Errorf("spin_y_ms = %v", config.SpinYPeriodMS)
			}
			// keys absent from the file keep their default
			if config.SpinXPeriodMS != 1700 || config.FOV != 70 || config.Near != 0.0001 {
				t.Errorf("defaults lost: %+v", config)
			}
			opts, err := config.ShaderOptions()
			if err != nil {
				t.Fatal(err)
			}
			if opts.Primary != metadata.NewColor(0, 255, 128) {
				t.Errorf("primary = %+v", opts.Primary)
			}
		})
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"unknown format", ".ini", "shader=flat"},
		{"broken toml", ".toml", "shader = "},
		{"broken yaml", ".yml", "shader: [flat"},
		{"odd height", ".toml", "height = 31"},
		{"unknown shader", ".toml", `shader = "plasma"`},
		{"unknown colour", ".toml", `primary = "blurple"`},
		{"lua without script", ".toml", `shader = "lua"`},
		{"bad colour mode", ".toml", `color_mode = "cga"`},
		{"bad cull mode", ".toml", `cull = "sideways"`},
		{"eye on target", ".toml", "eye = [0.0, 0.0, 0.0]"},
		{"looking along up", ".toml", "eye = [0.0, -3.0, 0.0]"},
		{"near behind camera", ".toml", "near = 0.0"},
		{"far before near", ".toml", "near = 5.0\nfar = 1.0"},
		{"fov past a half turn", ".toml", "fov = 200.0"},
		{"negative workers", ".toml", "workers = -2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.data), tt.ext); !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yml")
	if err := os.WriteFile(path, []byte("shader: normal\ncull: none\nworkers: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.Shader != shaders.SHADER_NORMAL || config.Workers != 4 {
		t.Errorf("config = %+v", config)
	}
	if cull, _ := ParseCullMode(config.CullMode); cull != metadata.FaceCullModeNone {
		t.Errorf("cull = %v", cull)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}

func TestAutoSize(t *testing.T) {
	config := DefaultApplicationConfig()
	if config.AutoSize() {
		t.Error("default config auto-sizes")
	}
	config.Width = 0
	if !config.AutoSize() {
		t.Error("zero width does not auto-size")
	}
}

func TestParseConfigMesh(t *testing.T) {
	config, err := ParseConfig([]byte(`mesh = "torus"`), ".toml")
	if err != nil {
		t.Fatal(err)
	}
	if config.Mesh != "torus" {
		t.Errorf("mesh = %q", config.Mesh)
	}
	if _, err := ParseConfig([]byte(`mesh = "teapot"`), ".toml"); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("teapot: %v", err)
	}
}
