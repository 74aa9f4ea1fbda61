package models

import "time"

// ApprovalStatus is the review state of an institute or institute request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// Institute is the root of the hierarchy. It is only created by approving an
// InstituteRequest.
type Institute struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Code             string         `json:"code"`
	Email            string         `json:"email"`
	Type             string         `json:"type"`
	ApprovalStatus   ApprovalStatus `json:"approvalStatus"`
	Status           EntityStatus   `json:"status"`
	Colleges         IDSet          `json:"colleges"`
	StudentCount     int            `json:"studentCount"` // advisory cache, see CountInstituteStudents
	ApprovedAt       *time.Time     `json:"approvedAt,omitempty"`
	ReviewComment    string         `json:"reviewComment,omitempty"`
	TempPasswordHash string         `json:"-"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// IsActive reports whether the institute can own new colleges.
func (i *Institute) IsActive() bool {
	return i.Status == StatusActive && i.ApprovalStatus == ApprovalApproved
}
