package middleware

import (
	"net/http"

	"github.com/ADRCoding/college-bites-delivery/api/responses"
	"github.com/ADRCoding/college-bites-delivery/pkg/enums"
	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
	"github.com/ADRCoding/college-bites-delivery/pkg/logger"
)

// RequireDriver gates routes to accounts that may own schedules.
func RequireDriver(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.UserType(RoleFromContext(r.Context()))
			if !role.CanDrive() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "driver role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
