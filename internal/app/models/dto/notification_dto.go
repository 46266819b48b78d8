package dto

// CreateNotificationRequest sends a notification to users or a role
type CreateNotificationRequest struct {
	Title   string  `json:"title" binding:"required,max=200"`
	Message string  `json:"message" binding:"required,max=5000"`
	Type    string  `json:"type" binding:"omitempty,oneof=INFO WARNING ALERT"`
	UserIDs []int64 `json:"userIds" binding:"omitempty,dive,gt=0"`
	Role    string  `json:"role" binding:"omitempty,max=50"`
}

// NotificationSentResponse reports fan-out size
type NotificationSentResponse struct {
	Recipients int `json:"recipients"`
}

// AttendanceTrendPoint is a daily attendance rate
type AttendanceTrendPoint struct {
	Date    string  `json:"date" example:"2025-10-06"`
	Total   int64   `json:"total"`
	Present int64   `json:"present"`
	Rate    float64 `json:"rate"`
}
