package validator

import (
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"fmt"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterCustom(validate); err != nil {
		panic(err)
	}
}

func GetValidator() *validator.Validate {
	return validate
}

// RegisterCustom adds the game-specific tags:
//
//	mark        X, O or empty
//	difficulty  easy, medium or hard
func RegisterCustom(v *validator.Validate) error {
	if err := v.RegisterValidation("mark", validateMark); err != nil {
		return fmt.Errorf("failed to register mark validation: %w", err)
	}
	if err := v.RegisterValidation("difficulty", validateDifficulty); err != nil {
		return fmt.Errorf("failed to register difficulty validation: %w", err)
	}
	return nil
}

// BindGin installs the custom tags on gin's binding validator.
func BindGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return RegisterCustom(v)
}

func validateMark(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return game.PlayerMark(fl.Field().String()).Valid()
}

func validateDifficulty(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return bot.Difficulty(fl.Field().String()).Valid()
}
