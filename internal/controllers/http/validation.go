package http

import (
	"log"
	"reflect"
	"sync"

	"delivery-service/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// registerValidators adds the "money" tag: a non-negative decimal that fits
// the stored scale.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Fatalf("validation: unexpected validator engine %T", binding.Validator.Engine())
		}
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		if err := v.RegisterValidation("money", validMoney); err != nil {
			log.Fatalf("validation: register money: %v", err)
		}
	})
}

func validMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() && domain.FitsMoneyScale(d)
}
