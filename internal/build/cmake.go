package build

import (
	"sort"

	"github.com/tsukumogami/g4install/internal/shell"
)

// Toggles are the CMake options the configuration guide asks the operator
// to switch on.
var Toggles = []string{
	"GEANT4_INSTALL_DATA",
	"GEANT4_USE_OPENGL_X11",
	"GEANT4_USE_QT",
	"GEANT4_USE_RAYTRACER_X11",
}

type defineValue struct {
	value    string
	typeName string
}

// CMake assembles a non-interactive configure command equivalent to the
// choices made by hand in ccmake.
type CMake struct {
	sourceDir  string
	buildDir   string
	installDir string
	defines    map[string]defineValue
}

// NewCMake returns a configurer with the install prefix and every toggle
// switched on.
func NewCMake(sourceDir, buildDir, installDir string) *CMake {
	c := &CMake{
		sourceDir:  sourceDir,
		buildDir:   buildDir,
		installDir: installDir,
		defines:    make(map[string]defineValue),
	}
	for _, t := range Toggles {
		c.DefineBool(t, true)
	}
	return c
}

// Define adds a -D<key>:STRING=<value> definition.
func (c *CMake) Define(key, value string) {
	c.defines[key] = defineValue{value: value, typeName: "STRING"}
}

// DefineBool adds a -D<key>:BOOL=ON/OFF definition.
func (c *CMake) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	c.defines[key] = defineValue{value: v, typeName: "BOOL"}
}

// ConfigureCommand is "cmake -S <source> -B <build> -D...", run from the
// build directory.
func (c *CMake) ConfigureCommand() shell.Command {
	if c.installDir != "" {
		c.Define("CMAKE_INSTALL_PREFIX", c.installDir)
	}
	args := []string{"-S", c.sourceDir, "-B", c.buildDir}
	args = append(args, c.definesArgs()...)
	return shell.Cmd("cmake", args...).In(c.buildDir)
}

func (c *CMake) definesArgs() []string {
	keys := make([]string, 0, len(c.defines))
	for k := range c.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		d := c.defines[k]
		args = append(args, "-D"+k+":"+d.typeName+"="+d.value)
	}
	return args
}
