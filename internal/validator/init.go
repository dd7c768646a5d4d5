package validator

import (
	"ctchen222/tictactoe/internal/game"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// "mark" accepts X or O in any case
	_ = validate.RegisterValidation("mark", func(fl validator.FieldLevel) bool {
		_, err := game.ParseMark(fl.Field().String())
		return err == nil
	})
	// "first" also accepts "random"
	_ = validate.RegisterValidation("first", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		if v == "random" {
			return true
		}
		_, err := game.ParseMark(v)
		return err == nil
	})
}

func GetValidator() *validator.Validate {
	return validate
}
