package jwttoken

import (
	authmw "clientview/pkg/platform/middleware/auth"
)

// validator narrows JWTService to what the auth middleware reads: the subject
// for the audit actor and the token id for logs.
type validator struct {
	service *JWTService
}

// AsValidator returns the service as an auth middleware validator.
func (s *JWTService) AsValidator() authmw.JWTValidator {
	return validator{service: s}
}

func (v validator) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{Subject: claims.Subject, JTI: claims.ID}, nil
}
