package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hrms-lite/internal/models"
)

func rec(id, employee, date string, status models.AttendanceStatus) models.AttendanceRecord {
	return models.AttendanceRecord{ID: id, EmployeeID: employee, Date: date, Status: status}
}

func sampleRecords() []models.AttendanceRecord {
	return []models.AttendanceRecord{
		rec("r1", "E1", "2024-01-05", models.AttendanceStatusPresent),
		rec("r2", "E2", "2024-01-05", models.AttendanceStatusAbsent),
		rec("r3", "E1", "2024-01-10", models.AttendanceStatusAbsent),
		rec("r4", "E2", "2024-01-12", models.AttendanceStatusPresent),
		rec("r5", "E1", "2024-01-12", models.AttendanceStatusPresent),
	}
}

func ids(records []models.AttendanceRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestFilterEmployeeAndStartDate(t *testing.T) {
	records := []models.AttendanceRecord{
		rec("a", "E1", "2024-01-05", models.AttendanceStatusPresent),
		rec("b", "E1", "2024-01-10", models.AttendanceStatusAbsent),
	}
	criteria := models.FilterCriteria{EmployeeID: "E1", StartDate: "2024-01-06"}

	filtered := Filter(records, criteria)
	require.Len(t, filtered, 1)
	assert.Equal(t, "2024-01-10", filtered[0].Date)

	stats := Aggregate(filtered, criteria)
	require.NotNil(t, stats)
	assert.Equal(t, models.AttendanceStats{Total: 1, Present: 0, Absent: 1, Percentage: 0}, *stats)
}

func TestFilterBoundsAreInclusive(t *testing.T) {
	filtered := Filter(sampleRecords(), models.FilterCriteria{StartDate: "2024-01-05", EndDate: "2024-01-10"})
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(filtered))
}

func TestFilterPreservesInputOrder(t *testing.T) {
	filtered := Filter(sampleRecords(), models.FilterCriteria{EmployeeID: "E1"})
	assert.Equal(t, []string{"r1", "r3", "r5"}, ids(filtered))
}

func TestFilterNoCriteriaReturnsEverything(t *testing.T) {
	records := sampleRecords()
	assert.Equal(t, records, Filter(records, models.FilterCriteria{}))
}

func TestFilterMatchesPredicateForAllCriteria(t *testing.T) {
	records := sampleRecords()
	employees := []string{"", "E1", "E2", "E9"}
	dates := []string{"", "2024-01-01", "2024-01-05", "2024-01-10", "2024-01-12", "2024-02-01"}

	for _, emp := range employees {
		for _, start := range dates {
			for _, end := range dates {
				criteria := models.FilterCriteria{EmployeeID: emp, StartDate: start, EndDate: end}
				var want []string
				for _, r := range records {
					if (emp == "" || r.EmployeeID == emp) &&
						(start == "" || r.Date >= start) &&
						(end == "" || r.Date <= end) {
						want = append(want, r.ID)
					}
				}
				got := ids(Filter(records, criteria))
				if want == nil {
					want = []string{}
				}
				assert.Equal(t, want, got, "criteria %+v", criteria)

				stats := Aggregate(Filter(records, criteria), criteria)
				if !criteria.Active() {
					assert.Nil(t, stats)
					continue
				}
				require.NotNil(t, stats)
				assert.Equal(t, stats.Total, stats.Present+stats.Absent)
			}
		}
	}
}

func TestAggregateNilWithoutCriteria(t *testing.T) {
	assert.Nil(t, Aggregate(sampleRecords(), models.FilterCriteria{}))
}

func TestAggregateEmptyWithActiveFilter(t *testing.T) {
	stats := Aggregate(nil, models.FilterCriteria{EndDate: "2024-01-01"})
	require.NotNil(t, stats)
	assert.Equal(t, models.AttendanceStats{}, *stats)
}

func TestAggregateRoundsPercentage(t *testing.T) {
	criteria := models.FilterCriteria{EmployeeID: "E1"}
	twoOfThree := []models.AttendanceRecord{
		rec("1", "E1", "2024-01-01", models.AttendanceStatusPresent),
		rec("2", "E1", "2024-01-02", models.AttendanceStatusPresent),
		rec("3", "E1", "2024-01-03", models.AttendanceStatusAbsent),
	}
	stats := Aggregate(twoOfThree, criteria)
	require.NotNil(t, stats)
	assert.Equal(t, 67, stats.Percentage)

	oneOfEight := make([]models.AttendanceRecord, 8)
	for i := range oneOfEight {
		oneOfEight[i] = rec("x", "E1", "2024-01-01", models.AttendanceStatusAbsent)
	}
	oneOfEight[0].Status = models.AttendanceStatusPresent
	// 12.5 rounds up
	assert.Equal(t, 13, Aggregate(oneOfEight, criteria).Percentage)
}

func TestAggregateIsDeterministic(t *testing.T) {
	criteria := models.FilterCriteria{StartDate: "2024-01-05"}
	first := Aggregate(Filter(sampleRecords(), criteria), criteria)
	second := Aggregate(Filter(sampleRecords(), criteria), criteria)
	assert.Equal(t, first, second)
}

func TestSortByDateDesc(t *testing.T) {
	records := sampleRecords()
	sorted := SortByDateDesc(records)

	assert.Equal(t, []string{"r4", "r5", "r3", "r1", "r2"}, ids(sorted))
	assert.Equal(t, "r1", records[0].ID, "input must not be reordered")
}
