package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload issued by the identity collaborator.
// The engine treats the user id as opaque; role enforcement stays upstream.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
