package dto

// SectionRequest creates or updates a section
type SectionRequest struct {
	CourseID  int64  `json:"courseId" binding:"required,gt=0"`
	SessionID int64  `json:"sessionId" binding:"required,gt=0"`
	BatchID   *int64 `json:"batchId" binding:"omitempty,gt=0"`
	FacultyID *int64 `json:"facultyId" binding:"omitempty,gt=0"`
	Name      string `json:"name" binding:"required,max=20" example:"A"`
	Capacity  int    `json:"capacity" binding:"required,min=1,max=1000" example:"50"`
}

// EnrollStudentsRequest enrolls students into a section
type EnrollStudentsRequest struct {
	StudentIDs []int64 `json:"studentIds" binding:"required,min=1,dive,gt=0"`
}

// EnrollmentResult reports how many enrollments were new
type EnrollmentResult struct {
	Requested int   `json:"requested"`
	Enrolled  int64 `json:"enrolled"`
	Total     int64 `json:"total"`
}

// TimetableSlotRequest creates or updates a timetable slot
type TimetableSlotRequest struct {
	SectionID int64  `json:"sectionId" binding:"required,gt=0"`
	DayOfWeek int    `json:"dayOfWeek" binding:"required,min=1,max=7" example:"1"`
	StartTime string `json:"startTime" binding:"required,clock" example:"09:00"`
	EndTime   string `json:"endTime" binding:"required,clock" example:"10:30"`
	Room      string `json:"room" binding:"required,max=50" example:"B-204"`
}
