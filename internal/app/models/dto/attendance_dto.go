package dto

import "github.com/yigit/unicampus/internal/app/models"

// AttendanceEntry is one student's mark
type AttendanceEntry struct {
	StudentID int64  `json:"studentId" binding:"required,gt=0"`
	Status    string `json:"status" binding:"required,oneof=PRESENT ABSENT LATE EXCUSED"`
	Remarks   string `json:"remarks" binding:"max=255"`
}

// MarkAttendanceRequest marks a section's attendance for a date
type MarkAttendanceRequest struct {
	Date    models.Date       `json:"date" binding:"required" swaggertype:"string" example:"2025-10-06"`
	Records []AttendanceEntry `json:"records" binding:"required,min=1,dive"`
}

// MarkAttendanceResponse summarises a marking
type MarkAttendanceResponse struct {
	SectionID int64       `json:"sectionId"`
	Date      models.Date `json:"date" swaggertype:"string"`
	Saved     int         `json:"saved"`
}

// RosterAttendance is a roster line with the day's status, nil when unmarked
type RosterAttendance struct {
	StudentID      int64                    `json:"studentId"`
	RegistrationNo string                   `json:"registrationNo"`
	FirstName      string                   `json:"firstName"`
	LastName       string                   `json:"lastName"`
	Status         *models.AttendanceStatus `json:"status"`
	Remarks        string                   `json:"remarks,omitempty"`
}

// SectionAttendanceResponse lists a section's attendance for a date
type SectionAttendanceResponse struct {
	SectionID int64              `json:"sectionId"`
	Date      models.Date        `json:"date" swaggertype:"string"`
	Records   []RosterAttendance `json:"records"`
}

// AttendanceSummaryItem is a per-section percentage
type AttendanceSummaryItem struct {
	models.SectionAttendanceSummary
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
	Shortage   bool    `json:"shortage"`
}

// StudentAttendanceSummary lists a student's sections
type StudentAttendanceSummary struct {
	StudentID int64                   `json:"studentId"`
	Threshold float64                 `json:"threshold"`
	Sections  []AttendanceSummaryItem `json:"sections"`
}

// ShortageAlertResult counts notified students
type ShortageAlertResult struct {
	SectionID int64   `json:"sectionId"`
	Threshold float64 `json:"threshold"`
	Notified  int     `json:"notified"`
}
