package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"docvault-be/internal/pkg/apperrors"
)

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return apperrors.New(apperrors.KindValidation,
				fmt.Sprintf("field %s failed on %s", first.Field(), first.Tag()))
		}
		return apperrors.Wrap(apperrors.KindValidation, "invalid request", err)
	}
	return nil
}
