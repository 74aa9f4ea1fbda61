package models

import "fmt"

// EntityKind tags the closed set of hierarchy entity variants.
type EntityKind string

const (
	KindInstitute  EntityKind = "institute"
	KindCollege    EntityKind = "college"
	KindDepartment EntityKind = "department"
	KindFaculty    EntityKind = "faculty"
	KindStudent    EntityKind = "student"
)

// IsValid reports whether k is a known entity kind.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindInstitute, KindCollege, KindDepartment, KindFaculty, KindStudent:
		return true
	}
	return false
}

// Ref identifies an entity by kind and identifier.
type Ref struct {
	Kind EntityKind `json:"kind" binding:"required"`
	ID   string     `json:"id" binding:"required"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ID)
}

// EntityStatus marks soft deletion.
type EntityStatus string

const (
	StatusActive   EntityStatus = "Active"
	StatusInactive EntityStatus = "Inactive"
)

// EdgeKind names one of the ownership edges of the hierarchy.
type EdgeKind string

const (
	EdgeInstituteCollege  EdgeKind = "institute_college"
	EdgeCollegeDepartment EdgeKind = "college_department"
	EdgeDepartmentFaculty EdgeKind = "department_faculty"
	EdgeDepartmentStudent EdgeKind = "department_student"
	EdgeFacultyStudent    EdgeKind = "faculty_student"
)

// Edges lists every edge kind in hierarchy order.
var Edges = []EdgeKind{
	EdgeInstituteCollege,
	EdgeCollegeDepartment,
	EdgeDepartmentFaculty,
	EdgeDepartmentStudent,
	EdgeFacultyStudent,
}

// Kinds returns the parent and child entity kinds joined by the edge.
func (e EdgeKind) Kinds() (parent, child EntityKind, ok bool) {
	switch e {
	case EdgeInstituteCollege:
		return KindInstitute, KindCollege, true
	case EdgeCollegeDepartment:
		return KindCollege, KindDepartment, true
	case EdgeDepartmentFaculty:
		return KindDepartment, KindFaculty, true
	case EdgeDepartmentStudent:
		return KindDepartment, KindStudent, true
	case EdgeFacultyStudent:
		return KindFaculty, KindStudent, true
	}
	return "", "", false
}

// HasMembershipSet reports whether the parent side of the edge stores a set
// of child identifiers. Department→Student is held only by the student's
// pointer.
func (e EdgeKind) HasMembershipSet() bool {
	return e != EdgeDepartmentStudent
}

// EdgeBetween infers the edge joining a parent kind to a child kind.
func EdgeBetween(parent, child EntityKind) (EdgeKind, bool) {
	for _, e := range Edges {
		p, c, _ := e.Kinds()
		if p == parent && c == child {
			return e, true
		}
	}
	return "", false
}

// IDSet is a set of entity identifiers kept in insertion order.
type IDSet []string

// Has reports whether id is a member.
func (s IDSet) Has(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add inserts id if absent and reports whether the set changed.
func (s *IDSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove deletes id if present and reports whether the set changed.
func (s *IDSet) Remove(id string) bool {
	for i, v := range *s {
		if v == id {
			*s = append((*s)[:i:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return IDSet{}
	}
	out := make(IDSet, len(s))
	copy(out, s)
	return out
}
