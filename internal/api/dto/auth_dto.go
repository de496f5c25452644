package dto

// MemberRegisterRequest payload for new members.
type MemberRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for member and operator login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
