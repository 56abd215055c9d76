package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolvePicksCheapest(t *testing.T) {
	m := NewModel(2)
	m.AddVar("c@u.edu", 300)
	m.AddVar("a@u.edu", 100)
	m.AddVar("b@u.edu", 200)

	sol := m.Solve()
	require.True(t, sol.Feasible)
	assert.Equal(t, []string{"a@u.edu", "b@u.edu"}, sol.Chosen)
	assert.Equal(t, int64(300), sol.Cost)
}

func TestSolveRespectsForbidden(t *testing.T) {
	m := NewModel(1)
	m.AddVar("a@u.edu", 100)
	m.AddVar("b@u.edu", 200)
	m.Forbid("a@u.edu")

	sol := m.Solve()
	require.True(t, sol.Feasible)
	assert.Equal(t, []string{"b@u.edu"}, sol.Chosen)
}

func TestSolveInfeasibleWhenPoolTooSmall(t *testing.T) {
	m := NewModel(3)
	m.AddVar("a@u.edu", 100)
	m.AddVar("b@u.edu", 200)

	sol := m.Solve()
	assert.False(t, sol.Feasible)
	assert.Empty(t, sol.Chosen)
}

func TestSolveInfeasibleWhenExclusionsBite(t *testing.T) {
	m := NewModel(2)
	m.AddVar("a@u.edu", 100)
	m.AddVar("b@u.edu", 200)
	m.Forbid("b@u.edu")

	sol := m.Solve()
	assert.False(t, sol.Feasible)
}

func TestSolveTieBreaksByID(t *testing.T) {
	m := NewModel(1)
	m.AddVar("z@u.edu", 100)
	m.AddVar("a@u.edu", 100)

	sol := m.Solve()
	require.True(t, sol.Feasible)
	assert.Equal(t, []string{"a@u.edu"}, sol.Chosen)
}

func TestSolveNegativeCosts(t *testing.T) {
	// Allocation bonuses can push a cost below zero; the minimum is still
	// the k smallest costs.
	m := NewModel(1)
	m.AddVar("bonus@u.edu", -50)
	m.AddVar("plain@u.edu", 0)

	sol := m.Solve()
	require.True(t, sol.Feasible)
	assert.Equal(t, []string{"bonus@u.edu"}, sol.Chosen)
	assert.Equal(t, int64(-50), sol.Cost)
}

func TestForbidUnknownIDIsNoop(t *testing.T) {
	m := NewModel(1)
	m.AddVar("a@u.edu", 10)
	m.Forbid("missing@u.edu")

	sol := m.Solve()
	require.True(t, sol.Feasible)
	assert.Equal(t, []string{"a@u.edu"}, sol.Chosen)
}

func TestZeroRequiredIsTriviallyFeasible(t *testing.T) {
	m := NewModel(0)
	m.AddVar("a@u.edu", 10)

	sol := m.Solve()
	require.True(t, sol.Feasible)
	assert.Empty(t, sol.Chosen)
	assert.Equal(t, int64(0), sol.Cost)
}
