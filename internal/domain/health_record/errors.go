package health_record

import "errors"

var (
	ErrRecordImmutable   = errors.New("health records cannot be modified once issued")
	ErrInvalidRecordKind = errors.New("invalid health record kind")
)
