package handler

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by request DTOs.
// It is safe to call more than once and panics if gin's validator cannot
// take the tags, since every request using them would fail to bind.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic(fmt.Sprintf("handler: unexpected binding validator engine %T", binding.Validator.Engine()))
		}
		if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
			panic(fmt.Sprintf("handler: register calendar_date validator: %v", err))
		}
	})
}

// calendarDateLayouts are the date forms request DTOs accept.
var calendarDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// validateCalendarDate accepts "2006-01-02" dates and ISO-8601 timestamps
// with or without a zone.
func validateCalendarDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, layout := range calendarDateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
