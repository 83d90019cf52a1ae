package citizen

import "errors"

var (
	ErrCitizenNotFound    = errors.New("citizen not registered")
	ErrNationalIDRequired = errors.New("national ID is required")
)
