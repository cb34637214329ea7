package jwttoken

import (
	"github.com/randi412-cooperh/RetailCrimeFhe/internal/platform/middleware"
)

// JWTServiceAdapter bridges the token service to the middleware validator
// interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{RetailerID: claims.RetailerID}, nil
}
