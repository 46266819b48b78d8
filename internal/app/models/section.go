package models

import "time"

// Section is a course offering in a session, optionally tied to a batch and instructor
type Section struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"courseId"`
	CourseCode  string    `json:"courseCode,omitempty"`
	CourseTitle string    `json:"courseTitle,omitempty"`
	SessionID   int64     `json:"sessionId"`
	SessionName string    `json:"sessionName,omitempty"`
	BatchID     *int64    `json:"batchId,omitempty"`
	FacultyID   *int64    `json:"facultyId,omitempty"`
	FacultyName *string   `json:"facultyName,omitempty"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Enrolled    int       `json:"enrolled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SectionStudent is a roster entry
type SectionStudent struct {
	StudentID      int64     `json:"studentId"`
	RegistrationNo string    `json:"registrationNo"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	EnrolledAt     time.Time `json:"enrolledAt"`
}

// TimetableSlot is a weekly meeting of a section
type TimetableSlot struct {
	ID        int64     `json:"id"`
	SectionID int64     `json:"sectionId"`
	DayOfWeek int       `json:"dayOfWeek"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Room      string    `json:"room"`
	SessionID int64     `json:"sessionId,omitempty"`
	FacultyID *int64    `json:"facultyId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
