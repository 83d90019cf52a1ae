package institute

import "errors"

var (
	ErrInstituteNotFound = errors.New("health institute not found")
	ErrInstituteInactive = errors.New("health institute is inactive")
	ErrInvalidType       = errors.New("invalid institute type")
	ErrInvalidOwnership  = errors.New("invalid institute ownership")
)
