package dto

import "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"

// EdgeRequest attaches or detaches a child. Edge may be omitted when the
// parent and child kinds determine it.
type EdgeRequest struct {
	Parent models.Ref      `json:"parent" binding:"required"`
	Child  models.Ref      `json:"child" binding:"required"`
	Edge   models.EdgeKind `json:"edge"`
}

// ReassignRequest moves a child from OldParent to NewParent
type ReassignRequest struct {
	Child     models.Ref      `json:"child" binding:"required"`
	OldParent models.Ref      `json:"oldParent" binding:"required"`
	NewParent models.Ref      `json:"newParent" binding:"required"`
	Edge      models.EdgeKind `json:"edge"`
}

// AssignHODRequest names the head of a department
type AssignHODRequest struct {
	FacultyID string `json:"facultyId" binding:"required"`
}

// AuditRequest selects the scope of a verify or repair run. An empty
// instituteId covers every institute and is reserved for the superadmin.
type AuditRequest struct {
	InstituteID string `json:"instituteId"`
}
