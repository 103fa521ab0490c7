package middleware

import (
	"net/http"

	"github.com/chocoalano/esas-api/internal/domain/auth"
	"github.com/chocoalano/esas-api/internal/handler/http/response"
)

// RequireCompany rejects tokens without a company_id claim.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := CompanyIDFromContext(r.Context()); err != nil {
			response.HandleError(w, auth.ErrCompanyIDMissing)
			return
		}

		next.ServeHTTP(w, r)
	})
}
