package user

import (
	appErrors "dojo-admin/pkg/errors"
)

// The storage adapter returns these so callers can use errors.Is against
// either package.
var (
	ErrUserNotFound      = appErrors.ErrUserNotFound
	ErrUserAlreadyExists = appErrors.ErrUserAlreadyExists
	ErrInvalidUserRole   = appErrors.ErrInvalidUserRole
	ErrResetTokenInvalid = appErrors.ErrResetTokenInvalid
)
