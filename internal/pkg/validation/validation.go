package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/yigit/unicampus/internal/app/models"
)

var (
	codePattern  = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{0,19}$`)
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	once       sync.Once
	translator ut.Translator
	setupErr   error
)

// PasswordMinLength is the minimum accepted password length
const PasswordMinLength = 8

// Setup registers custom rules and English messages on gin's validator. Safe to call repeatedly.
func Setup() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		setupErr = Register(v)
	})
	return setupErr
}

// Register installs tag name resolution, custom rules and translations on v
func Register(v *validator.Validate) error {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")

	if err := enTranslations.RegisterDefaultTranslations(v, translator); err != nil {
		return err
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok && !d.IsZero() {
			return d.String()
		}
		return ""
	}, models.Date{})

	rules := map[string]struct {
		fn      validator.Func
		message string
	}{
		"password": {validatePassword, "{0} must be at least 8 characters and contain a letter and a digit"},
		"code":     {validateCode, "{0} must be upper-case letters, digits or dashes"},
		"clock":    {validateClock, "{0} must be a time in HH:MM format"},
	}

	for tag, rule := range rules {
		if err := v.RegisterValidation(tag, rule.fn); err != nil {
			return err
		}
		message := rule.message
		err := v.RegisterTranslation(tag, translator,
			func(ut ut.Translator) error {
				return ut.Add(tag, message, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(fe.Tag(), fe.Field())
				return t
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// FieldErrors flattens validator errors into field -> message using the registered translations
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if translator != nil {
			out[fe.Field()] = fe.Translate(translator)
		} else {
			out[fe.Field()] = fe.Error()
		}
	}
	return out
}

// IsStrongPassword checks the password policy
func IsStrongPassword(password string) bool {
	if len(password) < PasswordMinLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// IsCode reports whether s is an upper-case catalog code such as CS-101
func IsCode(s string) bool {
	return codePattern.MatchString(s)
}

// IsClock reports whether s is HH:MM
func IsClock(s string) bool {
	return clockPattern.MatchString(s)
}

func validatePassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

func validateCode(fl validator.FieldLevel) bool {
	return IsCode(strings.ToUpper(fl.Field().String()))
}

func validateClock(fl validator.FieldLevel) bool {
	return IsClock(fl.Field().String())
}
