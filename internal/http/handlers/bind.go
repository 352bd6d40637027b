package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/geocoder89/roster/internal/apperr"
	"github.com/gin-gonic/gin"
)

// BindJSON decodes the request body into out. An empty body leaves out at its
// zero value so the flow's own validation reports the missing fields. It
// writes the error response and returns false when the body is unusable.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if ctx.Request.Body == nil || ctx.Request.Body == http.NoBody {
		return true
	}

	err := ctx.ShouldBindJSON(out)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large", nil)
		return false
	}

	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) && typeError.Field != "" {
		field := typeError.Field
		fields := apperr.Fields{}
		fields.Add(field, typeMessage(field, typeError.Type))

		RespondAppError(ctx, apperr.Validation(fields, field))
		return false
	}

	RespondBadRequest(ctx, "Invalid request body")
	return false
}

func typeMessage(field string, t reflect.Type) string {
	attr := strings.ReplaceAll(field, "_", " ")

	switch t.Kind() {
	case reflect.String:
		return fmt.Sprintf("The %s field must be a string.", attr)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("The %s field must be an integer.", attr)
	case reflect.Bool:
		return fmt.Sprintf("The %s field must be true or false.", attr)
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}
