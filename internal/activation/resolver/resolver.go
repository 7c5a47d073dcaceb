// Package resolver holds the pure activation decision logic. A Snapshot is
// built from in-memory copies of the catalog, the dependency edges and one
// tenant's subscription state; it performs no I/O.
//
// Checks are single-hop on purpose: the closure invariant (every active
// module's transitive dependencies are active) guarantees that validating
// direct dependencies and direct dependents at each transition preserves
// transitive correctness inductively.
package resolver

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	graphdomain "github.com/odontix/odontix/internal/graph/domain"
)

// Snapshot is an immutable view of the graph and one tenant's state.
type Snapshot struct {
	modules    map[snowflake.ID]catalogdomain.Module
	requires   map[snowflake.ID][]snowflake.ID
	dependents map[snowflake.ID][]snowflake.ID
	// state maps subscribed module -> currently active. Absence means the
	// tenant is not subscribed.
	state map[snowflake.ID]bool
	order map[snowflake.ID]int
}

// New builds a Snapshot. The modules slice defines presentation order; edge
// query results are sorted by it.
func New(modules []catalogdomain.Module, edges []graphdomain.DependencyEdge, subscriptions map[snowflake.ID]bool) *Snapshot {
	s := &Snapshot{
		modules:    make(map[snowflake.ID]catalogdomain.Module, len(modules)),
		requires:   make(map[snowflake.ID][]snowflake.ID),
		dependents: make(map[snowflake.ID][]snowflake.ID),
		state:      make(map[snowflake.ID]bool, len(subscriptions)),
		order:      make(map[snowflake.ID]int, len(modules)),
	}
	for i, m := range modules {
		s.modules[m.ID] = m
		s.order[m.ID] = i
	}
	for _, edge := range edges {
		s.requires[edge.ModuleID] = append(s.requires[edge.ModuleID], edge.DependsOnID)
		s.dependents[edge.DependsOnID] = append(s.dependents[edge.DependsOnID], edge.ModuleID)
	}
	for id, active := range subscriptions {
		s.state[id] = active
	}
	return s
}

// Subscribed reports whether the tenant holds an entitlement for the module.
func (s *Snapshot) Subscribed(id snowflake.ID) bool {
	_, ok := s.state[id]
	return ok
}

// Active reports whether the module is currently switched on for the tenant.
func (s *Snapshot) Active(id snowflake.ID) bool {
	return s.state[id]
}

// Module returns the catalog entry for id.
func (s *Snapshot) Module(id snowflake.ID) (catalogdomain.Module, bool) {
	m, ok := s.modules[id]
	return m, ok
}

// RequiredModules returns the direct dependencies of id, in catalog order.
func (s *Snapshot) RequiredModules(id snowflake.ID) []snowflake.ID {
	return s.sorted(s.requires[id])
}

// DependentModules returns the direct dependents of id, in catalog order.
func (s *Snapshot) DependentModules(id snowflake.ID) []snowflake.ID {
	return s.sorted(s.dependents[id])
}

// CanActivate reports whether the module may be switched on: subscribed, not
// already active, and every direct dependency active. missing lists the
// required-but-inactive modules; empty when allowed.
func (s *Snapshot) CanActivate(id snowflake.ID) (bool, []snowflake.ID) {
	if !s.Subscribed(id) || s.Active(id) {
		return false, nil
	}

	var missing []snowflake.ID
	for _, dep := range s.requires[id] {
		if !s.Active(dep) {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return false, s.sorted(missing)
	}
	return true, nil
}

// CanDeactivate reports whether the module may be switched off: subscribed,
// currently active, and no direct dependent active. blocking lists the active
// dependents; empty when allowed.
func (s *Snapshot) CanDeactivate(id snowflake.ID) (bool, []snowflake.ID) {
	if !s.Subscribed(id) || !s.Active(id) {
		return false, nil
	}

	var blocking []snowflake.ID
	for _, dependent := range s.dependents[id] {
		if s.Active(dependent) {
			blocking = append(blocking, dependent)
		}
	}
	if len(blocking) > 0 {
		return false, s.sorted(blocking)
	}
	return true, nil
}

func (s *Snapshot) sorted(ids []snowflake.ID) []snowflake.ID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]snowflake.ID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool {
		oi, oki := s.order[out[i]]
		oj, okj := s.order[out[j]]
		if oki && okj {
			return oi < oj
		}
		if oki != okj {
			return oki
		}
		return out[i] < out[j]
	})
	return out
}
