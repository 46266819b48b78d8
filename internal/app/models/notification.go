package models

import (
	"encoding/json"
	"time"
)

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationInfo    NotificationType = "INFO"
	NotificationWarning NotificationType = "WARNING"
	NotificationAlert   NotificationType = "ALERT"
)

// Notification is a message addressed to one user
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// AuditLog records a mutation
type AuditLog struct {
	ID        int64           `json:"id"`
	ActorID   *int64          `json:"actorId,omitempty"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  *int64          `json:"entityId,omitempty"`
	Details   json.RawMessage `json:"details"`
	IPAddress string          `json:"ipAddress"`
	CreatedAt time.Time       `json:"createdAt"`
}

// DashboardStats are the headline counters
type DashboardStats struct {
	ActiveStudents        int64    `json:"activeStudents"`
	Faculty               int64    `json:"faculty"`
	Departments           int64    `json:"departments"`
	Programs              int64    `json:"programs"`
	Courses               int64    `json:"courses"`
	ActiveSessionID       *int64   `json:"activeSessionId,omitempty"`
	ActiveSessionSections int64    `json:"activeSessionSections"`
	TodayAttendanceRate   *float64 `json:"todayAttendanceRate,omitempty"`
}

// DepartmentBreakdown counts people per department
type DepartmentBreakdown struct {
	DepartmentID int64  `json:"departmentId"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Students     int64  `json:"students"`
	Faculty      int64  `json:"faculty"`
}
