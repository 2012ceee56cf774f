package jwttoken

import (
	"trinity/internal/platform/middleware"
)

// Adapter exposes the token service through the middleware's validator
// interface.
type Adapter struct {
	service *Service
}

func NewAdapter(service *Service) *Adapter {
	return &Adapter{service: service}
}

func (a *Adapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{Csrf: claims.Csrf}, nil
}
