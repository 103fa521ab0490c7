package employee

import "errors"

var ErrEmploymentNotFound = errors.New("employment record not found")
