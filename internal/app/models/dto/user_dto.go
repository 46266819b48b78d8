package dto

// CreateUserRequest creates an account with roles
type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email,max=255"`
	Password  string  `json:"password" binding:"required,password"`
	FirstName string  `json:"firstName" binding:"required,min=1,max=100"`
	LastName  string  `json:"lastName" binding:"required,min=1,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	RoleIDs   []int64 `json:"roleIds" binding:"omitempty,dive,gt=0"`
}

// UpdateUserRequest updates profile fields
type UpdateUserRequest struct {
	FirstName string  `json:"firstName" binding:"required,min=1,max=100"`
	LastName  string  `json:"lastName" binding:"required,min=1,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
}

// UpdateUserStatusRequest changes account status
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE SUSPENDED"`
}

// AssignRolesRequest replaces a user's roles
type AssignRolesRequest struct {
	RoleIDs []int64 `json:"roleIds" binding:"required,min=1,dive,gt=0"`
}

// CreateRoleRequest creates a custom role
type CreateRoleRequest struct {
	Name          string  `json:"name" binding:"required,min=2,max=50"`
	Description   string  `json:"description" binding:"max=255"`
	PermissionIDs []int64 `json:"permissionIds" binding:"omitempty,dive,gt=0"`
}

// SetPermissionsRequest replaces a role's permissions
type SetPermissionsRequest struct {
	PermissionIDs []int64 `json:"permissionIds" binding:"required,dive,gt=0"`
}
