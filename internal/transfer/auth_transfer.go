package transfer

import "github.com/golang-jwt/jwt/v5"

type UserInfo struct {
	ID       FlexibleID `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     string     `json:"role"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        *UserInfo `json:"user"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// CustomClaims is carried in the studio's session cookie.
type CustomClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
