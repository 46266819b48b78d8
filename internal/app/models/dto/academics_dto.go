package dto

import "github.com/yigit/unicampus/internal/app/models"

// DepartmentRequest creates or updates a department
type DepartmentRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=150" example:"Computer Science"`
	Code        string `json:"code" binding:"required,code" example:"CS"`
	Description string `json:"description" binding:"max=2000"`
}

// SetDepartmentHeadRequest assigns a department head
type SetDepartmentHeadRequest struct {
	FacultyID *int64 `json:"facultyId" binding:"omitempty,gt=0"`
}

// ProgramRequest creates or updates a program
type ProgramRequest struct {
	DepartmentID  int64  `json:"departmentId" binding:"required,gt=0"`
	Name          string `json:"name" binding:"required,min=2,max=150" example:"BS Computer Science"`
	Code          string `json:"code" binding:"required,code" example:"BSCS"`
	DegreeLevel   string `json:"degreeLevel" binding:"required,oneof=BS MS PHD DIPLOMA"`
	DurationYears int    `json:"durationYears" binding:"required,min=1,max=7"`
}

// PLORequest creates or updates a program learning outcome
type PLORequest struct {
	Code        string `json:"code" binding:"required,code" example:"PLO1"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// BatchRequest creates or updates a batch
type BatchRequest struct {
	ProgramID  int64  `json:"programId" binding:"required,gt=0"`
	Name       string `json:"name" binding:"required,max=50" example:"BSCS-2024"`
	IntakeYear int    `json:"intakeYear" binding:"required" example:"2024"`
}

// BatchStatusRequest changes batch status
type BatchStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE GRADUATED"`
}

// CourseRequest creates or updates a course
type CourseRequest struct {
	DepartmentID int64  `json:"departmentId" binding:"required,gt=0"`
	Code         string `json:"code" binding:"required,code" example:"CS-101"`
	Title        string `json:"title" binding:"required,max=200" example:"Programming Fundamentals"`
	CreditHours  int    `json:"creditHours" binding:"required,min=1,max=6" example:"3"`
	Description  string `json:"description" binding:"max=2000"`
}

// CLORequest creates or updates a course learning outcome
type CLORequest struct {
	Code        string `json:"code" binding:"required,code" example:"CLO1"`
	Description string `json:"description" binding:"required,max=2000"`
	BloomLevel  int    `json:"bloomLevel" binding:"required,min=1,max=6"`
}

// CLOMappingItem maps one PLO
type CLOMappingItem struct {
	PLOID  int64  `json:"ploId" binding:"required,gt=0"`
	Weight string `json:"weight" binding:"required,oneof=LOW MEDIUM HIGH"`
}

// CLOMappingRequest replaces a CLO's PLO mappings
type CLOMappingRequest struct {
	Mappings []CLOMappingItem `json:"mappings" binding:"dive"`
}

// OutcomeMatrixRow is a CLO with its mapped PLOs
type OutcomeMatrixRow struct {
	CLO      *models.CLO            `json:"clo"`
	Mappings []models.CLOPLOMapping `json:"mappings"`
}

// OutcomeMatrixResponse is the CLO x PLO matrix of a course
type OutcomeMatrixResponse struct {
	Course *models.Course     `json:"course"`
	Rows   []OutcomeMatrixRow `json:"rows"`
}

// SessionRequest creates or updates an academic session
type SessionRequest struct {
	Name      string      `json:"name" binding:"required,max=50" example:"Fall 2025"`
	Term      string      `json:"term" binding:"required,oneof=FALL SPRING SUMMER"`
	Year      int         `json:"year" binding:"required,min=1950,max=2200"`
	StartDate models.Date `json:"startDate" binding:"required" swaggertype:"string" example:"2025-09-01"`
	EndDate   models.Date `json:"endDate" binding:"required" swaggertype:"string" example:"2025-12-31"`
}
