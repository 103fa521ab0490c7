package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrUserIDMissing          = errors.New("user id missing from token")
	ErrCompanyIDMissing       = errors.New("company id missing from token")
)
