package dto

// ReviewInstituteRequest carries the superadmin's comment on approval or
// rejection. Rejection requires it.
type ReviewInstituteRequest struct {
	Comment string `json:"comment"`
}
