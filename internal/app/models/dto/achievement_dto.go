package dto

import "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"

// SubmitAchievementForm is the multipart form of an achievement submission.
// The optional certificate is sent in the "certificate" file field.
type SubmitAchievementForm struct {
	Title         string `form:"title" binding:"required"`
	Category      string `form:"category" binding:"required"`
	Organization  string `form:"organization"`
	Description   string `form:"description"`
	DateCompleted string `form:"dateCompleted"` // YYYY-MM-DD
}

// ReviewAchievementRequest is a faculty decision on a pending achievement
type ReviewAchievementRequest struct {
	Decision models.AchievementStatus `json:"decision" binding:"required"`
	Comment  string                   `json:"comment"`
}
