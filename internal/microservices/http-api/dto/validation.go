package dto

import (
	"fmt"

	"cinetrack/internal/microservices/http-api/models"
	"cinetrack/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags used by the request DTOs
// on gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("mediatype", func(fl validator.FieldLevel) bool {
		return models.ValidMediaType(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		return service.ValidRating(fl.Field().Float())
	})
}
