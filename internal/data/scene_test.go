package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/geom"
	"github.com/ecsbridge/ecsbridge/internal/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScene = `
objects:
  - name: wheel
    parent: cart
    location: [1, 0, 0]
  - name: cart
    location: [0, 0, 5]
    velocity: [2, 0, 0]
    sync: store_to_world
    sweep: true
    teleport: teleport_physics
  - name: marker
    rotation: [0, 0, 2, 0]
    scale: [2, 2, 2]
    sync: disabled
`

func TestParseScene(t *testing.T) {
	s, err := ParseScene([]byte(sampleScene), "sample")
	require.NoError(t, err)
	require.Equal(t, 3, s.Count())

	// parents are moved ahead of their children
	assert.Equal(t, "cart", s.Objects[0].Name)
	assert.Equal(t, "wheel", s.Objects[1].Name)

	cart, ok := s.Get("cart")
	require.True(t, ok)
	assert.Equal(t, component.SyncStoreToWorld, cart.Mode)
	assert.True(t, cart.Sweep)
	assert.Equal(t, host.TeleportPhysics, cart.Teleport)
	assert.Equal(t, geom.V3(2, 0, 0), cart.Velocity)
	assert.Equal(t, geom.V3(0, 0, 5), cart.Transform.Location)

	wheel, _ := s.Get("wheel")
	assert.Equal(t, component.SyncBothWays, wheel.Mode)
	assert.Equal(t, "cart", wheel.Parent)
	assert.Equal(t, geom.V3(1, 1, 1), wheel.Transform.Scale)

	marker, _ := s.Get("marker")
	assert.InDelta(t, 1.0, marker.Transform.Rotation.Z, geom.Epsilon)
	assert.Equal(t, component.SyncDisabled, marker.Mode)
}

func TestParseScene_Errors(t *testing.T) {
	cases := map[string]string{
		"no name":        "objects:\n  - location: [0, 0, 0]\n",
		"duplicate":      "objects:\n  - name: a\n  - name: a\n",
		"bad sync":       "objects:\n  - name: a\n    sync: sideways\n",
		"bad teleport":   "objects:\n  - name: a\n    teleport: warp\n",
		"short vector":   "objects:\n  - name: a\n    location: [1, 2]\n",
		"unknown parent": "objects:\n  - name: a\n    parent: b\n",
		"cycle":          "objects:\n  - name: a\n    parent: b\n  - name: b\n    parent: a\n",
		"self parent":    "objects:\n  - name: a\n    parent: a\n",
		"yaml":           "objects: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScene([]byte(raw), name)
			assert.Error(t, err)
		})
	}
}

func TestLoadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScene), 0o644))
	s, err := LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Count())

	_, err = LoadScene(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
