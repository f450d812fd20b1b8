package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate performs schema validation on the configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}
	return nil
}

func convertValidationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}

	first := fieldErrors[0]
	field := strings.ToLower(first.Namespace())
	switch first.Tag() {
	case "required":
		return fmt.Errorf("config: %s is required", field)
	case "oneof":
		return fmt.Errorf("config: %s must be one of [%s]", field, first.Param())
	case "url":
		return fmt.Errorf("config: %s must be a valid URL", field)
	case "gte":
		return fmt.Errorf("config: %s must be >= %s", field, first.Param())
	default:
		return fmt.Errorf("config: %s failed %s validation", field, first.Tag())
	}
}
