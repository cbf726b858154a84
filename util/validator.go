package util

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/bwise1/groupsplit_api/internal/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	validate.RegisterValidation("split_type", validateSplitType)
	validate.RegisterValidation("member_role", validateMemberRole)
	validate.RegisterValidation("member_status", validateMemberStatus)
	validate.RegisterValidation("payment_status", validatePaymentStatus)
	validate.RegisterValidation("decimal", validateDecimal)
	validate.RegisterValidation("positive_decimal", validatePositiveDecimal)
}

// decimalValue lets tags on decimal.Decimal fields see the value as a string.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateSplitType(fl validator.FieldLevel) bool {
	return model.SplitType(fl.Field().String()).Valid()
}

func validateMemberRole(fl validator.FieldLevel) bool {
	return model.MemberRole(fl.Field().String()).Valid()
}

func validateMemberStatus(fl validator.FieldLevel) bool {
	return model.MemberStatus(fl.Field().String()).Valid()
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	return model.PaymentStatus(fl.Field().String()).Valid()
}

func validateDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}

func validatePositiveDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
