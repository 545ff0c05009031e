package validator

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/attendance-backend/internal/model"
)

// batchRule validates a studentId → status map: non-empty, non-empty keys, known statuses.
const batchRule = "required,min=1,dive,keys,required,endkeys,oneof=present absent holiday"

// bcryptMaxTag limits a string to the bytes bcrypt can hash. Validator's
// max counts runes, which lets multi-byte passwords through.
const bcryptMaxTag = "bcryptmax"

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	// Reject payloads carrying fields the endpoint does not know about.
	binding.EnableDecoderDisallowUnknownFields = true

	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register English translations.
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation(bcryptMaxTag, func(fl govalidator.FieldLevel) bool {
			return len(fl.Field().String()) <= model.MaxPasswordBytes
		})
		_ = v.RegisterTranslation(bcryptMaxTag, trans,
			func(ut ut.Translator) error {
				return ut.Add(bcryptMaxTag, "{0} must be at most {1} bytes long", true)
			},
			func(ut ut.Translator, fe govalidator.FieldError) string {
				msg, _ := ut.T(bcryptMaxTag, fe.Field(), strconv.Itoa(model.MaxPasswordBytes))
				return msg
			},
		)
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			name := fe.Field()
			if name == "" {
				name = "body"
			}
			if trans != nil {
				fields[name] = fe.Translate(trans)
			} else {
				fields[name] = fe.Error()
			}
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error or unknown field).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindAttendanceBatch binds a studentId → status body. Gin only validates
// structs, so the map is checked explicitly with ValidateAttendanceBatch.
func BindAttendanceBatch(c *gin.Context, dst *model.MarkStudentsRequest) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return ValidateAttendanceBatch(*dst)
}

// ValidateAttendanceBatch checks that the batch is non-empty, has no blank
// student IDs and only carries known statuses.
func ValidateAttendanceBatch(batch model.MarkStudentsRequest) map[string]string {
	if err := engine().Var(map[string]model.AttendanceStatus(batch), batchRule); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

func engine() *govalidator.Validate {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		return v
	}
	return govalidator.New()
}
