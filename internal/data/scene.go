package data

import (
	"fmt"
	"os"

	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/geom"
	"github.com/ecsbridge/ecsbridge/internal/host"
	"gopkg.in/yaml.v3"
)

// ObjectDef is one world object of a scene, validated.
type ObjectDef struct {
	Name      string
	Transform geom.Transform
	Mode      component.SyncMode
	Sweep     bool
	Teleport  host.TeleportType
	Velocity  geom.Vec3
	Parent    string // empty for roots
}

// Scene is an ordered list of objects. Parents always precede their
// children.
type Scene struct {
	Objects []ObjectDef
	byName  map[string]int
}

// Get returns the object called name.
func (s *Scene) Get(name string) (ObjectDef, bool) {
	i, ok := s.byName[name]
	if !ok {
		return ObjectDef{}, false
	}
	return s.Objects[i], true
}

// Count returns the number of objects loaded.
func (s *Scene) Count() int {
	return len(s.Objects)
}

// --- YAML loading ---

type sceneFile struct {
	Objects []objectYAML `yaml:"objects"`
}

type objectYAML struct {
	Name     string    `yaml:"name"`
	Location []float64 `yaml:"location"` // x, y, z
	Rotation []float64 `yaml:"rotation"` // x, y, z, w; identity when empty
	Scale    []float64 `yaml:"scale"`    // x, y, z; one when empty
	Sync     string    `yaml:"sync"`     // defaults to both_ways
	Sweep    bool      `yaml:"sweep"`
	Teleport string    `yaml:"teleport"`
	Velocity []float64 `yaml:"velocity"`
	Parent   string    `yaml:"parent"`
}

// LoadScene loads a scene definition from YAML.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	return ParseScene(raw, path)
}

// ParseScene decodes and validates a scene. name is used in errors.
func ParseScene(raw []byte, name string) (*Scene, error) {
	var f sceneFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", name, err)
	}

	defs := make(map[string]ObjectDef, len(f.Objects))
	order := make([]string, 0, len(f.Objects))
	for i, o := range f.Objects {
		def, err := o.resolve()
		if err != nil {
			return nil, fmt.Errorf("scene: %s: object %d: %w", name, i, err)
		}
		if _, dup := defs[def.Name]; dup {
			return nil, fmt.Errorf("scene: %s: duplicate object %q", name, def.Name)
		}
		defs[def.Name] = def
		order = append(order, def.Name)
	}

	s := &Scene{byName: make(map[string]int, len(defs))}
	visiting := make(map[string]bool)
	var visit func(n string) error
	visit = func(n string) error {
		if _, done := s.byName[n]; done {
			return nil
		}
		if visiting[n] {
			return fmt.Errorf("parent cycle through %q", n)
		}
		visiting[n] = true
		def := defs[n]
		if def.Parent != "" {
			if _, ok := defs[def.Parent]; !ok {
				return fmt.Errorf("object %q: unknown parent %q", n, def.Parent)
			}
			if err := visit(def.Parent); err != nil {
				return err
			}
		}
		s.byName[n] = len(s.Objects)
		s.Objects = append(s.Objects, def)
		return nil
	}
	for _, n := range order {
		if err := visit(n); err != nil {
			return nil, fmt.Errorf("scene: %s: %w", name, err)
		}
	}
	return s, nil
}

func (o objectYAML) resolve() (ObjectDef, error) {
	if o.Name == "" {
		return ObjectDef{}, fmt.Errorf("missing name")
	}
	def := ObjectDef{
		Name:      o.Name,
		Transform: geom.Identity(),
		Mode:      component.SyncBothWays,
		Sweep:     o.Sweep,
		Parent:    o.Parent,
	}
	var err error
	if def.Transform.Location, err = vec3(o.Location, geom.Vec3{}); err != nil {
		return def, fmt.Errorf("%q location: %w", o.Name, err)
	}
	if def.Transform.Scale, err = vec3(o.Scale, geom.V3(1, 1, 1)); err != nil {
		return def, fmt.Errorf("%q scale: %w", o.Name, err)
	}
	if def.Velocity, err = vec3(o.Velocity, geom.Vec3{}); err != nil {
		return def, fmt.Errorf("%q velocity: %w", o.Name, err)
	}
	switch len(o.Rotation) {
	case 0:
	case 4:
		def.Transform.Rotation = geom.Quat{X: o.Rotation[0], Y: o.Rotation[1], Z: o.Rotation[2], W: o.Rotation[3]}.Normalized()
	default:
		return def, fmt.Errorf("%q rotation: want 4 components, got %d", o.Name, len(o.Rotation))
	}
	if o.Sync != "" {
		if def.Mode, err = component.ParseSyncMode(o.Sync); err != nil {
			return def, fmt.Errorf("%q: %w", o.Name, err)
		}
	}
	if def.Teleport, err = host.ParseTeleportType(o.Teleport); err != nil {
		return def, fmt.Errorf("%q: %w", o.Name, err)
	}
	if def.Parent == def.Name {
		return def, fmt.Errorf("%q is its own parent", o.Name)
	}
	return def, nil
}

func vec3(v []float64, def geom.Vec3) (geom.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return geom.V3(v[0], v[1], v[2]), nil
	default:
		return def, fmt.Errorf("want 3 components, got %d", len(v))
	}
}
