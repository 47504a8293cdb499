package service

import (
	"strings"
	"time"

	"github.com/noah-isme/hrms-lite/internal/attendance"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
)

// dateProvider yields today's date in tz, or in fallback when tz is empty.
// An unknown zone is a validation error.
func dateProvider(clock func() time.Time, tz string, fallback *time.Location) (attendance.DateProvider, error) {
	loc := fallback
	if tz = strings.TrimSpace(tz); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown time zone "+tz)
		}
		loc = parsed
	}
	return attendance.NewDateProvider(clock, loc), nil
}
