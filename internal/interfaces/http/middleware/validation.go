package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes binding errors name the query or path parameter a
// client sent rather than the Go field it landed in.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(parameterName)
	}
}

// parameterName picks the first of the form, uri and json tags
func parameterName(field reflect.StructField) string {
	for _, key := range [...]string{"form", "uri", "json"} {
		name, _, _ := strings.Cut(field.Tag.Get(key), ",")
		switch name {
		case "":
			continue
		case "-":
			return ""
		}
		return name
	}
	return field.Name
}

var ruleMessages = map[string]func(param string) string{
	"required": func(string) string { return "This field is required" },
	"uuid":     func(string) string { return "Invalid UUID format" },
	"min":      func(p string) string { return "Must be at least " + p },
	"max":      func(p string) string { return "Must be at most " + p },
	"oneof":    func(p string) string { return "Must be one of: " + p },
}

func ruleMessage(fe validator.FieldError) string {
	if msg, ok := ruleMessages[fe.Tag()]; ok {
		return msg(fe.Param())
	}
	return "Invalid value"
}

// FormatValidationErrors turns a binding error into the error envelope.
// Errors that do not come from the validator, such as a page size that is
// not a number, become a single detail without a field.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var (
		details []dto.ValidationDetail
		fields  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &fields):
		details = make([]dto.ValidationDetail, 0, len(fields))
		for _, fe := range fields {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: ruleMessage(fe)})
		}
	case err != nil:
		details = []dto.ValidationDetail{{Message: err.Error()}}
	}
	return dto.NewErrorResponse(dto.ErrCodeValidation, "Request validation failed", requestID, details...)
}

// HandleValidationError aborts the request with 400
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		FormatValidationErrors(err, logger.GetRequestID(c.Request.Context())))
}
