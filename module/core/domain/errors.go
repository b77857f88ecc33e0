package domain

import "errors"

var (
	ErrInvalidGeometry  = errors.New("invalid geometry")
	ErrIncidentNotFound = errors.New("incident not found")
)
