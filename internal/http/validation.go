package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ride-auth/internal/domain"
)

var registerOnce sync.Once

// registerValidators añade la regla "phone" al validador de gin y usa los nombres JSON en los errores.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return domain.IsValidPhone(strings.TrimSpace(fl.Field().String()))
		})
	})
}

var fieldMessages = map[string]string{
	"required": "this field is required",
	"phone":    "phone number must be digits and between 9 and 15 long",
	"len":      "invalid length",
	"numeric":  "must contain only digits",
	"uuid":     "must be a valid uuid",
	"oneof":    "value not allowed",
	"min":      "value too small",
	"max":      "value too large",
}

// bindJSON decodifica el cuerpo; si falla responde 400 con el mapa de errores por campo.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			msg, ok := fieldMessages[fe.Tag()]
			if !ok {
				msg = "invalid value"
			}
			fields[fe.Field()] = msg
		}
	} else {
		fields["body"] = "malformed json"
	}
	respondError(c, http.StatusBadRequest, "invalid request", fields)
	return false
}
