package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"runhub/internal/domain"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string      `json:"error"`
	Code  domain.Code `json:"code"`
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// statusFor maps an error code to its HTTP status.
func statusFor(code domain.Code) int {
	switch code {
	case domain.CodeInvalidRequest,
		domain.CodeMalformedID,
		domain.CodeUnregisteredUser,
		domain.CodeUnregisteredParticipant,
		domain.CodeDuplicateConversation:
		return http.StatusBadRequest
	case domain.CodeNotAParticipant:
		return http.StatusUnauthorized
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status and coarse message for err. Causes of
// server-side failures are logged and never returned.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	code := domain.ErrorCode(err)
	status := statusFor(code)

	msg := "internal error"
	var de *domain.Error
	if status < http.StatusInternalServerError && errors.As(err, &de) {
		msg = de.Message
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", string(code)),
			zap.Error(err))
		if code == domain.CodeUnknown {
			code = domain.CodeStore
		}
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON decodes and validates a request body into dst.
func decodeJSON(r *http.Request, op string, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.InvalidRequest(op, "invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return domain.InvalidRequest(op, fmt.Sprintf("field %s failed %s", fe.Namespace(), fe.Tag()))
		}
		return domain.InvalidRequest(op, err.Error())
	}
	return nil
}
