package handler

// --- Request types ---

type registerRequest struct {
	Username    string  `json:"username"    validate:"required,min=3,max=50,username"`
	Email       string  `json:"email"       validate:"required,max=100,email"`
	Password    string  `json:"password"    validate:"required,min=6"`
	FirstName   string  `json:"firstName"   validate:"required,min=1,max=50"`
	LastName    string  `json:"lastName"    validate:"required,min=1,max=50"`
	Role        *string `json:"role"        validate:"omitnil,role"`
	Department  *string `json:"department"  validate:"omitnil,max=100"`
	Position    *string `json:"position"    validate:"omitnil,max=100"`
	EmployeeID  *string `json:"employeeId"  validate:"omitnil,max=50"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitnil,max=20,phone"`
}

// loginRequest.Username accepts a username or an email address.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FirstName   *string `json:"firstName"   validate:"omitnil,min=1,max=50"`
	LastName    *string `json:"lastName"    validate:"omitnil,min=1,max=50"`
	Department  *string `json:"department"  validate:"omitnil,max=100"`
	Position    *string `json:"position"    validate:"omitnil,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitnil,max=20,phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

// --- Response types ---

type authData struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type userData struct {
	User userResponse `json:"user"`
}
