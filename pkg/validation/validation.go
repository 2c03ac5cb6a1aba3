// Package validation declares the form schemas shared by the HTTP handlers
// and the client workflows. Rules live in `binding` struct tags so the same
// structs validate under gin's binder and under Validate.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a field's wire name to a human readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var (
	engine     *validator.Validate
	engineOnce sync.Once
	now        = time.Now
)

// Engine returns the package validator, configured with the custom tags.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New()
		v.SetTagName("binding")
		if err := Register(v); err != nil {
			panic(err)
		}
		engine = v
	})
	return engine
}

// Register installs the custom tags and wire-name lookup on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(wireName)
	if err := v.RegisterValidation("notfuture", notFuture); err != nil {
		return err
	}
	return v.RegisterValidation("nonblank", nonBlank)
}

// InstallGin registers the custom tags on gin's default binding validator.
func InstallGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return Register(v)
}

type trimmer interface {
	Trim()
}

// Validate checks s and returns nil when it is valid. A form passed by
// pointer that has a Trim method is trimmed in place before the check.
func Validate(s interface{}) FieldErrors {
	if t, ok := s.(trimmer); ok {
		t.Trim()
	}
	return FromError(Engine().Struct(s))
}

// FromError converts a validator error into FieldErrors. Errors that are not
// field validation failures are reported under the "_" key.
func FromError(err error) FieldErrors {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func notFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	n := now()
	tomorrow := time.Date(n.Year(), n.Month(), n.Day()+1, 0, 0, 0, 0, n.Location())
	return t.Before(tomorrow)
}

func nonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "wajib diisi"
	case "min":
		if isString {
			return fmt.Sprintf("minimal %s karakter", fe.Param())
		}
		return fmt.Sprintf("minimal %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("maksimal %s karakter", fe.Param())
		}
		return fmt.Sprintf("maksimal %s", fe.Param())
	case "email":
		return "format email tidak valid"
	case "numeric":
		return "harus berupa angka"
	case "oneof":
		return "harus salah satu dari: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "notfuture":
		return "tanggal tidak boleh di masa depan"
	case "nonblank":
		return "tidak boleh kosong"
	case "eqfield":
		return "tidak cocok"
	default:
		return "tidak valid"
	}
}
