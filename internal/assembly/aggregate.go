package assembly

import (
	"math"
	"time"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

// DefaultPassPercentage is the pass threshold applied when none is configured.
const DefaultPassPercentage = 40.0

// FeeSummary aggregates fee rows. PaidCount+PendingCount and the ByStatus
// counts both add up to Rows.
type FeeSummary struct {
	Rows          int                      `json:"rows"`
	TotalFees     float64                  `json:"total_fees"`
	TotalDiscount float64                  `json:"total_discount"`
	TotalPaid     float64                  `json:"total_paid"`
	TotalBalance  float64                  `json:"total_balance"`
	PaidCount     int                      `json:"paid_count"`
	PendingCount  int                      `json:"pending_count"`
	ByStatus      map[models.FeeStatus]int `json:"by_status"`
}

// CollectionRate is paid over payable (total minus discount), as a percentage.
func (s FeeSummary) CollectionRate() float64 {
	payable := s.TotalFees - s.TotalDiscount
	if payable <= 0 {
		return 0
	}
	return s.TotalPaid / payable * 100
}

// SummarizeFees totals fee rows. Balances are recomputed per row from the
// amounts so the reported balance always equals the sum of the rows.
func SummarizeFees(rows []FeeView, now time.Time) FeeSummary {
	summary := FeeSummary{Rows: len(rows), ByStatus: make(map[models.FeeStatus]int)}
	for _, row := range rows {
		rec := row.Record
		balance := rec.Outstanding()
		summary.TotalFees += rec.TotalAmount
		summary.TotalDiscount += rec.Discount
		summary.TotalPaid += rec.PaidAmount
		summary.TotalBalance += balance
		if balance <= 0 {
			summary.PaidCount++
		} else {
			summary.PendingCount++
		}
		summary.ByStatus[models.FeeStatusFor(balance, rec.PaidAmount, rec.DueDate, now)]++
	}
	return summary
}

// ExamSummary aggregates an award list. Passed+Failed+Absent equals Rows.
type ExamSummary struct {
	Rows              int      `json:"rows"`
	Appeared          int      `json:"appeared"`
	Absent            int      `json:"absent"`
	Passed            int      `json:"passed"`
	Failed            int      `json:"failed"`
	TotalMarks        float64  `json:"total_marks"`
	AveragePercentage float64  `json:"average_percentage"`
	HighestMarks      *float64 `json:"highest_marks,omitempty"`
	LowestMarks       *float64 `json:"lowest_marks,omitempty"`
	PassPercentage    float64  `json:"pass_percentage"`
}

// PassRate is passed over appeared, as a percentage.
func (s ExamSummary) PassRate() float64 {
	if s.Appeared == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Appeared) * 100
}

// Percentage converts marks to a percentage of maxMarks.
func Percentage(marks, maxMarks float64) float64 {
	if maxMarks <= 0 {
		return 0
	}
	return marks / maxMarks * 100
}

// Passed reports whether marks reach the pass threshold.
func Passed(marks, maxMarks, passPercentage float64) bool {
	return Percentage(marks, maxMarks) >= passPercentage
}

// SummarizeResults aggregates result rows. The average percentage is the mean
// of per-row percentages over students who appeared, not the percentage of
// summed marks. A negative threshold selects DefaultPassPercentage; zero is a
// valid threshold.
func SummarizeResults(rows []ResultRow, maxMarks, passPercentage float64) ExamSummary {
	if passPercentage < 0 || math.IsNaN(passPercentage) {
		passPercentage = DefaultPassPercentage
	}
	summary := ExamSummary{Rows: len(rows), PassPercentage: passPercentage}
	var pctSum float64
	for _, row := range rows {
		if row.Result == nil || row.Result.MarksObtained == nil {
			summary.Absent++
			continue
		}
		marks := *row.Result.MarksObtained
		summary.Appeared++
		summary.TotalMarks += marks
		pctSum += Percentage(marks, maxMarks)
		if Passed(marks, maxMarks, passPercentage) {
			summary.Passed++
		} else {
			summary.Failed++
		}
		if summary.HighestMarks == nil || marks > *summary.HighestMarks {
			m := marks
			summary.HighestMarks = &m
		}
		if summary.LowestMarks == nil || marks < *summary.LowestMarks {
			m := marks
			summary.LowestMarks = &m
		}
	}
	if summary.Appeared > 0 {
		summary.AveragePercentage = pctSum / float64(summary.Appeared)
	}
	return summary
}

// AttendanceSummary counts statuses over attendance rows.
type AttendanceSummary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
	Other   int `json:"other"`
}

// AttendanceRate counts late arrivals as attended.
func (s AttendanceSummary) AttendanceRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Present+s.Late) / float64(s.Total) * 100
}

// SummarizeAttendance counts every row exactly once.
func SummarizeAttendance(rows []AttendanceView) AttendanceSummary {
	summary := AttendanceSummary{Total: len(rows)}
	for _, row := range rows {
		switch row.Record.Status {
		case models.AttendanceStatusPresent:
			summary.Present++
		case models.AttendanceStatusAbsent:
			summary.Absent++
		case models.AttendanceStatusLate:
			summary.Late++
		case models.AttendanceStatusExcused:
			summary.Excused++
		default:
			summary.Other++
		}
	}
	return summary
}

// Round1 rounds to one decimal place. Only the emitter calls it.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds currency amounts for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
