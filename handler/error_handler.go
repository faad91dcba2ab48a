package handler

import (
	"fmt"
	"fruit-api/common"
	"fruit-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorHandlingMiddleware adapts an AppError-returning handler to http.Handler.
// A panic in next is reported as a 500.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.WithFields(logrus.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				}).Error("Recovered from panic in handler")
				common.NewAppError(http.StatusInternalServerError, "Internal server error", fmt.Errorf("panic: %v", rec)).Send(w)
			}
		}()

		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}
