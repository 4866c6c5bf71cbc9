package models

import "github.com/golang-jwt/jwt/v5"

// ServiceClaims are the claims carried by a platform service token.
type ServiceClaims struct {
	Service string `json:"svc"`
	jwt.RegisteredClaims
}
