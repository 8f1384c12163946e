package handlers

import (
	"sync"
	"time"

	"dream_build_backend/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by request DTOs.
// It must run before any route binds a body that uses them.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("activity_status", func(fl validator.FieldLevel) bool {
			return models.IsValidActivityStatus(fl.Field().String())
		})
		_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
			return models.IsValidRole(fl.Field().String())
		})
		_ = v.RegisterValidation("record_type", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == models.RecordTypeIncome || s == models.RecordTypeExpense
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		})
	})
}
