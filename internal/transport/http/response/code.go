package response

import (
	"net/http"

	"estate-api/internal/domain"
)

var CodeMsgMap = map[int]string{
	http.StatusBadRequest:            "Bad request",
	http.StatusUnauthorized:          "Unauthorized",
	http.StatusForbidden:             "Forbidden",
	http.StatusNotFound:              "Not found",
	http.StatusConflict:              "Conflict",
	http.StatusRequestEntityTooLarge: "Request body too large",
	http.StatusTooManyRequests:       "Too many requests",
	http.StatusInternalServerError:   "Internal server error",
	http.StatusServiceUnavailable:    "Server busy",
	http.StatusGatewayTimeout:        "Timeout",
}

// StatusOf maps an error kind onto the HTTP status of the signup surface.
func StatusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindDuplicate, domain.KindMalformedEvent:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
