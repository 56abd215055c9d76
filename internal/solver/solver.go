// Package solver implements the boolean assignment model behind proctor
// selection. A model holds one 0/1 decision variable per candidate, an
// exactly-k cardinality constraint, forced-false exclusions, and a linear
// cost objective to minimize.
//
// Models are one-shot: build, solve, discard. Callers re-instantiate a fresh
// model per attempt instead of mutating constraints on a solved one, which
// rules out stale-variable leakage between override stages.
package solver

import "sort"

// Var is a boolean decision variable with a linear objective coefficient.
type Var struct {
	ID   string
	Cost int64

	forbidden bool
}

// Model is a one-shot exactly-k selection model over boolean variables.
type Model struct {
	vars    []*Var
	index   map[string]*Var
	exactly int
}

// Solution reports the chosen variable IDs and the objective value.
// Feasible is false when no assignment satisfies the constraints; Chosen is
// empty in that case.
type Solution struct {
	Chosen   []string
	Cost     int64
	Feasible bool
}

// NewModel creates an empty model requiring exactly k chosen variables.
func NewModel(k int) *Model {
	return &Model{index: make(map[string]*Var), exactly: k}
}

// AddVar registers a decision variable. Re-adding an existing ID updates
// its cost.
func (m *Model) AddVar(id string, cost int64) {
	if v, ok := m.index[id]; ok {
		v.Cost = cost
		return
	}
	v := &Var{ID: id, Cost: cost}
	m.vars = append(m.vars, v)
	m.index[id] = v
}

// Forbid forces the variable with the given ID to false. Unknown IDs are
// ignored so exclusion sets can be applied without intersecting them with
// the candidate pool first.
func (m *Model) Forbid(id string) {
	if v, ok := m.index[id]; ok {
		v.forbidden = true
	}
}

// Forbidden reports whether the variable is forced false.
func (m *Model) Forbidden(id string) bool {
	v, ok := m.index[id]
	return ok && v.forbidden
}

// Size returns the number of registered variables.
func (m *Model) Size() int {
	return len(m.vars)
}

// Solve minimizes the summed cost of chosen variables subject to the
// exactly-k constraint and all forced-false exclusions.
//
// Because the objective is a plain sum over independent variables, the
// optimum is the k cheapest admissible variables; no search is needed.
// Ties are broken by variable ID ascending, so the result is deterministic
// for a given input regardless of insertion order.
func (m *Model) Solve() Solution {
	admissible := make([]*Var, 0, len(m.vars))
	for _, v := range m.vars {
		if !v.forbidden {
			admissible = append(admissible, v)
		}
	}

	if len(admissible) < m.exactly {
		return Solution{}
	}

	sort.Slice(admissible, func(i, j int) bool {
		if admissible[i].Cost != admissible[j].Cost {
			return admissible[i].Cost < admissible[j].Cost
		}
		return admissible[i].ID < admissible[j].ID
	})

	chosen := make([]string, 0, m.exactly)
	var total int64
	for _, v := range admissible[:m.exactly] {
		chosen = append(chosen, v.ID)
		total += v.Cost
	}

	return Solution{Chosen: chosen, Cost: total, Feasible: true}
}
