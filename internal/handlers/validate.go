package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"wishTracker/internal/models/wish"

	"github.com/go-playground/validator/v10"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Length limits are left to the service, which measures the trimmed value.
	_ = v.RegisterValidation("wish_status", func(fl validator.FieldLevel) bool {
		return wish.Status(fl.Field().String()).Valid()
	})
	return &requestValidator{validate: v}
}

// Struct returns the first failing field as "field: failed on 'tag' validation".
func (v *requestValidator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return fmt.Errorf("%s: failed on '%s' validation", fe.Field(), fe.Tag())
	}
	return err
}
