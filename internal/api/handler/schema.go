package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type registerRequest struct {
	UserID   string `json:"userId"   validate:"required"`
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type changeRoleRequest struct {
	UserID  string `json:"userId"  validate:"required"`
	NewRole string `json:"newRole" validate:"required"`
}

// updateUserRequest lists the only fields an update may touch. Anything else
// in the body (role, password, entryDate...) is ignored by the binder.
type updateUserRequest struct {
	UserID  string  `json:"userId"  validate:"required"`
	Name    *string `json:"name"    validate:"omitempty,min=1"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"   validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Website string `json:"website" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// --- Response types ---

// userResponse is the public projection of a user; the password hash never
// appears here.
type userResponse struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      string    `json:"role"`
	EntryDate time.Time `json:"entryDate"`
}

type tokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type roleResponse struct {
	Role string `json:"role"`
}
