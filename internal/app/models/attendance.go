package models

import "time"

// AttendanceStatus of a student on a day
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
)

// AttendanceRecord is one student's attendance for one section meeting day
type AttendanceRecord struct {
	ID        int64            `json:"id"`
	SectionID int64            `json:"sectionId"`
	StudentID int64            `json:"studentId"`
	Date      Date             `json:"date"`
	Status    AttendanceStatus `json:"status"`
	Remarks   string           `json:"remarks"`
	MarkedBy  *int64           `json:"markedBy,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// AttendanceCounts aggregates statuses
type AttendanceCounts struct {
	Present int64 `json:"present"`
	Absent  int64 `json:"absent"`
	Late    int64 `json:"late"`
	Excused int64 `json:"excused"`
}

// Total number of recorded meetings
func (c AttendanceCounts) Total() int64 {
	return c.Present + c.Absent + c.Late + c.Excused
}

// SectionAttendanceSummary is a student's attendance in one section
type SectionAttendanceSummary struct {
	SectionID   int64  `json:"sectionId"`
	SectionName string `json:"sectionName"`
	CourseCode  string `json:"courseCode"`
	StudentID   int64  `json:"studentId"`
	AttendanceCounts
}

// DailyAttendanceRate is the share of present-or-late records on a day
type DailyAttendanceRate struct {
	Date    Date  `json:"date"`
	Total   int64 `json:"total"`
	Present int64 `json:"present"`
}
