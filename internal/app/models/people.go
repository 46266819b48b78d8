package models

import "time"

// FacultyMember is a teaching staff record linked to a user
type FacultyMember struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	DepartmentID int64     `json:"departmentId"`
	EmployeeCode string    `json:"employeeCode"`
	Designation  string    `json:"designation"`
	JoiningDate  Date      `json:"joiningDate"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StudentStatus of an enrolled student
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusInactive  StudentStatus = "INACTIVE"
	StudentStatusSuspended StudentStatus = "SUSPENDED"
	StudentStatusGraduated StudentStatus = "GRADUATED"
)

// Student is a student record linked to a user
type Student struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"userId"`
	RegistrationNo string        `json:"registrationNo"`
	DepartmentID   int64         `json:"departmentId"`
	ProgramID      int64         `json:"programId"`
	BatchID        int64         `json:"batchId"`
	EnrollmentDate Date          `json:"enrollmentDate"`
	Status         StudentStatus `json:"status"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	Email          string        `json:"email"`
	Phone          *string       `json:"phone,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}
