package middleware

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/chocoalano/esas-api/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
)

// UserIDFromContext returns the user_id claim of the verified token.
func UserIDFromContext(ctx context.Context) (int64, error) {
	id, ok := int64Claim(ctx, "user_id")
	if !ok {
		return 0, auth.ErrUserIDMissing
	}
	return id, nil
}

// CompanyIDFromContext returns the company_id claim of the verified token.
func CompanyIDFromContext(ctx context.Context) (int64, error) {
	id, ok := int64Claim(ctx, "company_id")
	if !ok {
		return 0, auth.ErrCompanyIDMissing
	}
	return id, nil
}

// JSON numbers in claims decode as float64; string ids are accepted too.
func int64Claim(ctx context.Context, key string) (int64, bool) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return 0, false
	}

	var id int64
	switch v := claims[key].(type) {
	case float64:
		id = int64(v)
	case int64:
		id = v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		id = n
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	default:
		return 0, false
	}

	if id <= 0 {
		return 0, false
	}
	return id, true
}
