package handler

import (
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	courseCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{1,19}$`)
	sectionPattern    = regexp.MustCompile(`^[A-Za-z0-9]{1,5}$`)

	registerOnce sync.Once
)

// RegisterValidators 向 gin 的校验引擎注册 coursecode / section 标签
// 校验前先去除首尾空白，大小写在 Service 层统一
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("coursecode", validateCourseCode)
		_ = v.RegisterValidation("section", validateSection)
	})
}

func validateCourseCode(fl validator.FieldLevel) bool {
	return courseCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateSection(fl validator.FieldLevel) bool {
	return sectionPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}
