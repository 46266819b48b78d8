package models

import "time"

// Department is an academic department
type Department struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Description   string    `json:"description"`
	HeadFacultyID *int64    `json:"headFacultyId,omitempty"`
	HeadName      *string   `json:"headName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DegreeLevel of a program
type DegreeLevel string

const (
	DegreeBS      DegreeLevel = "BS"
	DegreeMS      DegreeLevel = "MS"
	DegreePhD     DegreeLevel = "PHD"
	DegreeDiploma DegreeLevel = "DIPLOMA"
)

// Program is a degree program offered by a department
type Program struct {
	ID             int64       `json:"id"`
	DepartmentID   int64       `json:"departmentId"`
	DepartmentName string      `json:"departmentName,omitempty"`
	Name           string      `json:"name"`
	Code           string      `json:"code"`
	DegreeLevel    DegreeLevel `json:"degreeLevel"`
	DurationYears  int         `json:"durationYears"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// PLO is a program learning outcome
type PLO struct {
	ID           int64     `json:"id"`
	ProgramID    int64     `json:"programId"`
	DepartmentID int64     `json:"departmentId"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BatchStatus of an intake
type BatchStatus string

const (
	BatchStatusActive    BatchStatus = "ACTIVE"
	BatchStatusGraduated BatchStatus = "GRADUATED"
)

// Batch is an intake cohort of a program
type Batch struct {
	ID          int64       `json:"id"`
	ProgramID   int64       `json:"programId"`
	ProgramCode string      `json:"programCode,omitempty"`
	Name        string      `json:"name"`
	IntakeYear  int         `json:"intakeYear"`
	Status      BatchStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Course is a catalog course
type Course struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"departmentId"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	CreditHours  int       `json:"creditHours"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CLO is a course learning outcome
type CLO struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"courseId"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	BloomLevel  int       `json:"bloomLevel"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MappingWeight is the strength of a CLO to PLO contribution
type MappingWeight string

const (
	WeightLow    MappingWeight = "LOW"
	WeightMedium MappingWeight = "MEDIUM"
	WeightHigh   MappingWeight = "HIGH"
)

// CLOPLOMapping links a CLO to a PLO
type CLOPLOMapping struct {
	CLOID   int64         `json:"cloId"`
	PLOID   int64         `json:"ploId"`
	PLOCode string        `json:"ploCode,omitempty"`
	Weight  MappingWeight `json:"weight"`
}

// Term of an academic session
type Term string

const (
	TermFall   Term = "FALL"
	TermSpring Term = "SPRING"
	TermSummer Term = "SUMMER"
)

// AcademicSession is a teaching term
type AcademicSession struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Term      Term      `json:"term"`
	Year      int       `json:"year"`
	StartDate Date      `json:"startDate"`
	EndDate   Date      `json:"endDate"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Contains reports whether d falls inside the session, inclusive
func (s *AcademicSession) Contains(d Date) bool {
	return !d.Before(s.StartDate) && !d.After(s.EndDate)
}
