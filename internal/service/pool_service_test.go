package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/ta-proctoring-api/internal/models"
)

func poolEmails(pool []models.TA) []string {
	emails := make([]string, 0, len(pool))
	for _, ta := range pool {
		emails = append(emails, ta.Email)
	}
	return emails
}

func TestPoolBuildRestrictsDepartment(t *testing.T) {
	f := newEligibilityFixture()
	f.staff.members = []models.Staff{
		{FullName: "Alice Smith", Department: "CS"},
		{FullName: "Bob Jones", Department: "EE"},
	}
	snap, err := f.service().Snapshot(context.Background(), examOn("2026-01-12", "CS315"))
	require.NoError(t, err)

	tas := &mockTADir{tas: []models.TA{
		{Email: "cs@uni.edu", Advisor: strPtr("Alice Smith")},
		{Email: "ee@uni.edu", Advisor: strPtr("Bob Jones")},
		{Email: "none@uni.edu"},
	}}
	pool := NewPoolService(tas, nil)

	restricted, err := pool.Build(context.Background(), snap, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"cs@uni.edu"}, poolEmails(restricted))

	full, err := pool.Build(context.Background(), snap, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"cs@uni.edu", "ee@uni.edu", "none@uni.edu"}, poolEmails(full))
}

func TestPoolBuildDeanExamSpansDepartmentsUnderCap(t *testing.T) {
	f := newEligibilityFixture()
	f.staff.members = []models.Staff{
		{FullName: "Alice Smith", Department: "CS"},
		{FullName: "Bob Jones", Department: "EE"},
	}
	f.settings.settings = models.GlobalSettings{MaxTAWorkload: 15}

	exam := examOn("2026-01-12", "CS315", "EE102")
	exam.Dean = true
	snap, err := f.service().Snapshot(context.Background(), exam)
	require.NoError(t, err)

	tas := &mockTADir{tas: []models.TA{
		{Email: "cs@uni.edu", Advisor: strPtr("Alice Smith"), Workload: 10},
		{Email: "ee@uni.edu", Advisor: strPtr("Bob Jones"), Workload: 15},
		{Email: "over@uni.edu", Advisor: strPtr("Alice Smith"), Workload: 16},
	}}
	pool := NewPoolService(tas, nil)

	// department restriction never applies to dean exams, the cap does
	got, err := pool.Build(context.Background(), snap, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"cs@uni.edu", "ee@uni.edu"}, poolEmails(got))
}

func TestPoolBuildDeanExamNoCap(t *testing.T) {
	f := newEligibilityFixture()
	exam := examOn("2026-01-12", "CS315", "EE102")
	exam.Dean = true
	snap, err := f.service().Snapshot(context.Background(), exam)
	require.NoError(t, err)

	tas := &mockTADir{tas: []models.TA{
		{Email: "a@uni.edu", Workload: 100},
		{Email: "b@uni.edu", Workload: 0},
	}}
	pool := NewPoolService(tas, nil)

	got, err := pool.Build(context.Background(), snap, true)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
