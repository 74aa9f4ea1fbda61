package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDSetAddRemoveIdempotent(t *testing.T) {
	var s IDSet

	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"))
	assert.True(t, s.Add("b"))
	assert.Equal(t, IDSet{"a", "b"}, s)

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, IDSet{"b"}, s)
}

func TestIDSetCloneIsIndependent(t *testing.T) {
	s := IDSet{"a", "b"}
	c := s.Clone()
	c.Remove("a")

	assert.Equal(t, IDSet{"a", "b"}, s)
	assert.Equal(t, IDSet{"b"}, c)
	assert.NotNil(t, IDSet(nil).Clone())
}

func TestEdgeBetween(t *testing.T) {
	edge, ok := EdgeBetween(KindFaculty, KindStudent)
	assert.True(t, ok)
	assert.Equal(t, EdgeFacultyStudent, edge)

	_, ok = EdgeBetween(KindInstitute, KindStudent)
	assert.False(t, ok)

	assert.False(t, EdgeDepartmentStudent.HasMembershipSet())
	assert.True(t, EdgeDepartmentFaculty.HasMembershipSet())
}

func TestCategoryAndDecision(t *testing.T) {
	assert.True(t, CategoryHackathon.IsValid())
	assert.False(t, Category("Sports").IsValid())

	assert.True(t, AchievementApproved.IsDecision())
	assert.False(t, AchievementPending.IsDecision())
}
