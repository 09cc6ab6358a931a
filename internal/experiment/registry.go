package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dynode/internal/dynamo"
	"github.com/san-kum/dynode/internal/integrators"
	"github.com/san-kum/dynode/internal/physics"
)

// Model builds a fresh system and names its default initial state.
type Model struct {
	New     func() dynamo.System
	Initial func() dynamo.State
	Labels  []string
}

type Registry struct {
	models map[string]Model
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]Model)}

	r.models["lorenz"] = Model{
		New:     func() dynamo.System { return physics.NewLorenz() },
		Initial: func() dynamo.State { return physics.NewLorenz().DefaultState() },
		Labels:  []string{"x", "y", "z"},
	}
	r.models["rossler"] = Model{
		New:     func() dynamo.System { return physics.NewRossler() },
		Initial: func() dynamo.State { return physics.NewRossler().DefaultState() },
		Labels:  []string{"x", "y", "z"},
	}
	r.models["vanderpol"] = Model{
		New:     func() dynamo.System { return physics.NewVanDerPol() },
		Initial: func() dynamo.State { return physics.NewVanDerPol().DefaultState() },
		Labels:  []string{"x", "v"},
	}
	r.models["pendulum"] = Model{
		New:     func() dynamo.System { return physics.NewPendulum() },
		Initial: func() dynamo.State { return physics.NewPendulum().DefaultState() },
		Labels:  []string{"theta", "omega"},
	}
	r.models["twobody"] = Model{
		New:     func() dynamo.System { return physics.NewTwoBody(physics.EarthMu) },
		Initial: func() dynamo.State { return physics.LowEarthOrbit().Initial() },
		Labels:  []string{"x", "y", "z", "vx", "vy", "vz"},
	}
	r.models["cr3bp"] = Model{
		New:     func() dynamo.System { return physics.NewCR3BP(physics.EarthMoonMu) },
		Initial: func() dynamo.State { return physics.NewCR3BP(physics.EarthMoonMu).DefaultState() },
		Labels:  []string{"x", "y", "z", "vx", "vy", "vz"},
	}

	return r
}

func (r *Registry) Register(name string, m Model) {
	r.models[name] = m
}

func (r *Registry) GetModel(name string) (Model, error) {
	m, ok := r.models[name]
	if !ok {
		return Model{}, fmt.Errorf("unknown model: %s", name)
	}
	return m, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListMethods names the adaptive tableaus a run can select.
func (r *Registry) ListMethods() []string {
	return integrators.Methods()
}
