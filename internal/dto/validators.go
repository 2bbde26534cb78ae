package dto

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/medrhouma/Projet-d-integration-sub000/internal/model"
)

// RegisterValidators 向 gin 的校验引擎注册自定义规则
//   - civildate: "YYYY-MM-DD"
//   - timeofday: "HH:MM" / "HH:MM:SS" / RFC3339
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin 校验引擎不是 validator/v10")
	}
	if err := v.RegisterValidation("civildate", validateCivilDate); err != nil {
		return err
	}
	return v.RegisterValidation("timeofday", validateTimeOfDay)
}

func validateCivilDate(fl validator.FieldLevel) bool {
	_, err := model.ParseDate(fl.Field().String())
	return err == nil
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := model.ParseTimeOfDay(fl.Field().String())
	return err == nil
}
