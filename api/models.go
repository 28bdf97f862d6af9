package api

import "github.com/Erkan3034/yurtgate/users"

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	DormName    string     `json:"dorm_name"`
	DormAddress string     `json:"dorm_address,omitempty"`
	Role        users.Role `json:"role"`
	Phone       string     `json:"phone,omitempty"`
	IBAN        string     `json:"iban,omitempty"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned from POST /auth/login and POST /auth/refresh.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest is the JSON body for POST /auth/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// StoreStatusResponse is returned from POST /me/store-status.
type StoreStatusResponse struct {
	StoreIsOpen bool   `json:"store_is_open"`
	Message     string `json:"message"`
}

// ErrorResponse is returned for all error cases.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
