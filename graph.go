package cgin

import (
	"github.com/pkg/errors"
)

// DependencyList names a pass and the passes whose accesses must complete before it runs.
type DependencyList struct {
	Pass         Pass
	Dependencies []Pass
}

// Hazard is an access to Resource by a dependency that must be ordered before an access
// by the dependent pass.
type Hazard struct {
	Resource Resource
	Src      Access
	Dst      Access
}

// GraphOptions configures a Graph. The zero value is the production configuration.
type GraphOptions struct {
	// Debug validates the declared graph and the barrier callback protocol. Without it,
	// two writers of one resource with no declared edge between them go unsynchronized.
	Debug bool
}

// Graph derives the barriers each pass needs from the dependencies between passes.
type Graph struct {
	opts    GraphOptions
	hazards map[Pass][]Hazard
	passes  []Pass

	// barrier callback bookkeeping while a pass is being prepared
	preparing   Pass
	calls       int
	callbackErr error
}

func NewGraph(opts *GraphOptions) *Graph {
	g := &Graph{hazards: map[Pass][]Hazard{}}
	if opts != nil {
		g.opts = *opts
	}
	return g
}

// ComputeHazards replaces the hazard cache with the hazards of lists. A use of R by a
// pass conflicts with every use of R by each of its direct dependencies, and each such
// pair is a hazard, in list, use, dependency, dependency use order.
func (g *Graph) ComputeHazards(lists []DependencyList) error {
	if g.opts.Debug {
		if err := validate(lists); err != nil {
			return err
		}
	}

	g.hazards = make(map[Pass][]Hazard, len(lists))
	g.passes = g.passes[:0]
	for _, l := range lists {
		if _, ok := g.hazards[l.Pass]; ok {
			continue
		}
		var hazards []Hazard
		for _, dst := range l.Pass.Uses() {
			for _, dep := range l.Dependencies {
				for _, src := range dep.Uses() {
					if src.Resource == dst.Resource {
						hazards = append(hazards, Hazard{Resource: dst.Resource, Src: src.Access, Dst: dst.Access})
					}
				}
			}
		}
		g.hazards[l.Pass] = hazards
		g.passes = append(g.passes, l.Pass)
		Logger().Debug("hazards computed", "pass", l.Pass.Name(), "hazards", len(hazards))
	}
	return nil
}

// RegisterPasses computes the hazards of lists and then prepares every pass that has
// not been prepared yet, in registration order. Registering the same graph again
// records nothing.
func (g *Graph) RegisterPasses(lists []DependencyList) error {
	if err := g.ComputeHazards(lists); err != nil {
		return err
	}
	for _, p := range g.passes {
		if p.Prepared() {
			continue
		}
		g.preparing, g.calls, g.callbackErr = p, 0, nil
		err := p.PrepareExecution(g.InsertBarriers)
		g.preparing = nil
		if err != nil {
			return errors.Wrapf(err, "prepare pass %s", p.Name())
		}
		if g.opts.Debug {
			if g.callbackErr != nil {
				return g.callbackErr
			}
			if g.calls != 1 {
				return errors.Wrapf(ErrBarrierCallback, "pass %s inserted barriers %d times", p.Name(), g.calls)
			}
		}
	}
	return nil
}

// InsertBarriers records the barriers pass needs: one per cached hazard, in discovery
// order, then a barrier from InitialAccess for every use whose resource no hazard covered.
func (g *Graph) InsertBarriers(cmd CommandBuffer, pass Pass) {
	if g.opts.Debug {
		g.calls++
		switch {
		case g.callbackErr != nil:
		case pass != g.preparing:
			g.callbackErr = errors.Wrapf(ErrBarrierCallback, "barriers inserted for %s outside its preparation", pass.Name())
		case cmd.Recorded() > 0:
			g.callbackErr = errors.Wrapf(ErrBarrierCallback, "pass %s recorded %d commands before its barriers", pass.Name(), cmd.Recorded())
		}
	}

	covered := map[Resource]struct{}{}
	for _, h := range g.hazards[pass] {
		h.Resource.InsertBarrier(cmd, h.Src, h.Dst)
		covered[h.Resource] = struct{}{}
	}
	for _, u := range pass.Uses() {
		if _, ok := covered[u.Resource]; !ok {
			u.Resource.InsertBarrier(cmd, InitialAccess, u.Access)
		}
	}
}

// Hazards returns a copy of the cached hazards of pass.
func (g *Graph) Hazards(pass Pass) []Hazard {
	return append([]Hazard(nil), g.hazards[pass]...)
}

// Passes returns the registered passes in registration order.
func (g *Graph) Passes() []Pass {
	return append([]Pass(nil), g.passes...)
}

// validate rejects graphs with duplicate passes, dependencies on passes that have not
// been registered earlier in lists, and pairs of writers with no path between them.
func validate(lists []DependencyList) error {
	registered := map[Pass]struct{}{}
	deps := map[Pass][]Pass{}
	for _, l := range lists {
		if _, ok := registered[l.Pass]; ok {
			return errors.Wrap(ErrDuplicatePass, l.Pass.Name())
		}
		for _, d := range l.Dependencies {
			if _, ok := registered[d]; !ok {
				return errors.Wrapf(ErrUnregisteredDependency, "%s depends on %s", l.Pass.Name(), d.Name())
			}
		}
		registered[l.Pass] = struct{}{}
		deps[l.Pass] = l.Dependencies
	}

	writers := map[Resource][]Pass{}
	var order []Resource
	for _, l := range lists {
		for _, u := range l.Pass.Uses() {
			if !u.Access.IsWrite() {
				continue
			}
			ws := writers[u.Resource]
			if len(ws) > 0 && ws[len(ws)-1] == l.Pass {
				continue
			}
			if ws == nil {
				order = append(order, u.Resource)
			}
			writers[u.Resource] = append(ws, l.Pass)
		}
	}
	for _, r := range order {
		ws := writers[r]
		for i := range ws {
			for j := i + 1; j < len(ws); j++ {
				if !reachable(deps, ws[j], ws[i]) && !reachable(deps, ws[i], ws[j]) {
					return errors.Wrapf(ErrUnorderedWriters, "%s and %s", ws[i].Name(), ws[j].Name())
				}
			}
		}
	}
	return nil
}

// reachable reports whether to is a transitive dependency of from.
func reachable(deps map[Pass][]Pass, from, to Pass) bool {
	seen := map[Pass]struct{}{}
	stack := append([]Pass(nil), deps[from]...)
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p == to {
			return true
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		stack = append(stack, deps[p]...)
	}
	return false
}
