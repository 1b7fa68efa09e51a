package handlers

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/services"
)

var registerOnce sync.Once

// RegisterValidators adds the domain rules used in request DTO tags:
//
//	swipetype    like | pass | super_like (and the legacy super_howl)
//	platform     android | ios | web, case-insensitive
//	reportreason one of domain.ReportReasons
//
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// Report JSON names in validation errors.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("swipetype", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseSwipeType(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
			p := strings.ToLower(strings.TrimSpace(fl.Field().String()))
			return slices.Contains(services.PushPlatforms, p)
		})
		_ = v.RegisterValidation("reportreason", func(fl validator.FieldLevel) bool {
			return slices.Contains(domain.ReportReasons, fl.Field().String())
		})
	})
}

// bindMessage turns a binding error into a short client message naming the
// first offending field.
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "swipetype":
			return "type must be one of like, pass, super_like"
		case "platform":
			return "platform must be android, ios or web"
		case "reportreason":
			return "reason must be one of " + strings.Join(domain.ReportReasons, ", ")
		case "max":
			return field + " is too long"
		default:
			return field + " is invalid"
		}
	}
	return "invalid JSON body"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
