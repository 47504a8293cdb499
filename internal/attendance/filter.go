package attendance

import (
	"math"
	"sort"

	"github.com/noah-isme/hrms-lite/internal/models"
)

// Filter returns the records matching every active predicate in criteria, in input order.
// Dates compare as strings, which is sound for ISO 8601 calendar days.
func Filter(records []models.AttendanceRecord, criteria models.FilterCriteria) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(records))
	for _, record := range records {
		if matches(record, criteria) {
			out = append(out, record)
		}
	}
	return out
}

func matches(record models.AttendanceRecord, criteria models.FilterCriteria) bool {
	if criteria.EmployeeID != "" && record.EmployeeID != criteria.EmployeeID {
		return false
	}
	if criteria.StartDate != "" && record.Date < criteria.StartDate {
		return false
	}
	if criteria.EndDate != "" && record.Date > criteria.EndDate {
		return false
	}
	return true
}

// Aggregate summarises an already filtered view. It returns nil when no criterion is active.
func Aggregate(filtered []models.AttendanceRecord, criteria models.FilterCriteria) *models.AttendanceStats {
	if !criteria.Active() {
		return nil
	}
	stats := &models.AttendanceStats{Total: len(filtered)}
	for _, record := range filtered {
		if record.Status == models.AttendanceStatusPresent {
			stats.Present++
		}
	}
	stats.Absent = stats.Total - stats.Present
	if stats.Total > 0 {
		stats.Percentage = int(math.Round(float64(stats.Present) / float64(stats.Total) * 100))
	}
	return stats
}

// SortByDateDesc returns a copy ordered newest first. Records sharing a date keep their relative order.
func SortByDateDesc(records []models.AttendanceRecord) []models.AttendanceRecord {
	sorted := make([]models.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	return sorted
}
