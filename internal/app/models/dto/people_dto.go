package dto

import "github.com/yigit/unicampus/internal/app/models"

// CreateFacultyRequest creates a user and faculty record
type CreateFacultyRequest struct {
	Email        string      `json:"email" binding:"required,email,max=255"`
	Password     string      `json:"password" binding:"required,password"`
	FirstName    string      `json:"firstName" binding:"required,max=100"`
	LastName     string      `json:"lastName" binding:"required,max=100"`
	Phone        *string     `json:"phone" binding:"omitempty,max=30"`
	DepartmentID int64       `json:"departmentId" binding:"required,gt=0"`
	EmployeeCode string      `json:"employeeCode" binding:"required,code" example:"EMP-0042"`
	Designation  string      `json:"designation" binding:"required,max=100" example:"Assistant Professor"`
	JoiningDate  models.Date `json:"joiningDate" binding:"required" swaggertype:"string" example:"2021-08-15"`
}

// UpdateFacultyRequest updates a faculty record
type UpdateFacultyRequest struct {
	FirstName    string      `json:"firstName" binding:"required,max=100"`
	LastName     string      `json:"lastName" binding:"required,max=100"`
	Phone        *string     `json:"phone" binding:"omitempty,max=30"`
	DepartmentID int64       `json:"departmentId" binding:"required,gt=0"`
	Designation  string      `json:"designation" binding:"required,max=100"`
	JoiningDate  models.Date `json:"joiningDate" binding:"required" swaggertype:"string"`
}

// CreateStudentRequest creates a user and student record
type CreateStudentRequest struct {
	Email          string      `json:"email" binding:"required,email,max=255"`
	Password       string      `json:"password" binding:"required,password"`
	FirstName      string      `json:"firstName" binding:"required,max=100"`
	LastName       string      `json:"lastName" binding:"required,max=100"`
	Phone          *string     `json:"phone" binding:"omitempty,max=30"`
	RegistrationNo string      `json:"registrationNo" binding:"required,code" example:"2024-CS-017"`
	DepartmentID   int64       `json:"departmentId" binding:"required,gt=0"`
	ProgramID      int64       `json:"programId" binding:"required,gt=0"`
	BatchID        int64       `json:"batchId" binding:"required,gt=0"`
	EnrollmentDate models.Date `json:"enrollmentDate" binding:"required" swaggertype:"string" example:"2024-09-01"`
}

// UpdateStudentRequest updates a student record
type UpdateStudentRequest struct {
	FirstName    string  `json:"firstName" binding:"required,max=100"`
	LastName     string  `json:"lastName" binding:"required,max=100"`
	Phone        *string `json:"phone" binding:"omitempty,max=30"`
	DepartmentID int64   `json:"departmentId" binding:"required,gt=0"`
	ProgramID    int64   `json:"programId" binding:"required,gt=0"`
	BatchID      int64   `json:"batchId" binding:"required,gt=0"`
}

// StudentStatusRequest changes a student's status
type StudentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE SUSPENDED GRADUATED"`
}
