package assembly

import (
	"fmt"
	"time"

	"github.com/noah-isme/sma-report-engine/internal/dto"
	"github.com/noah-isme/sma-report-engine/internal/models"
)

// Placeholders substituted for absent optional fields.
const (
	NotAvailable = "N/A"
	Dash         = "-"
	AbsentMarks  = "AB"
	dateLayout   = "2006-01-02"
)

// Result labels on award lists.
const (
	ResultPass   = "PASS"
	ResultFail   = "FAIL"
	ResultAbsent = "ABSENT"
)

func orNA(v string) string {
	if v == "" {
		return NotAvailable
	}
	return v
}

func derefOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format(dateLayout)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", Round2(v))
}

func formatMarks(v float64) string {
	return fmt.Sprintf("%g", v)
}

func studentNumber(v *StudentView) string {
	if v == nil {
		return NotAvailable
	}
	return orNA(v.Student.StudentNumber)
}

func studentName(v *StudentView) string {
	if v == nil {
		return NotAvailable
	}
	return orNA(v.Name())
}

func className(c *models.ClassRoom) string {
	if c == nil {
		return NotAvailable
	}
	return orNA(c.DisplayName())
}

func sessionName(s *models.AcademicSession) string {
	if s == nil {
		return NotAvailable
	}
	return orNA(s.Name)
}

// EmitRoster shapes an ordered roster.
func EmitRoster(classID string, class *models.ClassRoom, ordered []RankedEntry, dir *Directory) dto.ClassRoster {
	out := dto.ClassRoster{
		ClassID:   classID,
		ClassName: className(class),
		Total:     len(ordered),
		Students:  make([]dto.RosterEntry, 0, len(ordered)),
	}
	for _, r := range ordered {
		view, _ := dir.Student(r.StudentID)
		out.Students = append(out.Students, dto.RosterEntry{
			RollNumber:    r.RollNumber,
			StudentID:     r.StudentID,
			StudentNumber: studentNumber(view),
			StudentName:   orNA(r.Name),
		})
	}
	return out
}

// EmitRollSlip shapes one roll-number slip.
func EmitRollSlip(entry RankedEntry, student *StudentView, session *models.AcademicSession, exams []ExamView) dto.RollSlip {
	slip := dto.RollSlip{
		RollNumber:    entry.RollNumber,
		StudentNumber: studentNumber(student),
		StudentName:   orNA(entry.Name),
		GuardianName:  NotAvailable,
		ClassName:     NotAvailable,
		SessionName:   sessionName(session),
		Exams:         make([]dto.SlipExam, 0, len(exams)),
	}
	if student != nil {
		slip.GuardianName = derefOr(student.Student.GuardianName, NotAvailable)
		slip.ClassName = className(student.Class)
		if student.Profile != nil {
			slip.PhotoURL = derefOr(student.Profile.PhotoURL, "")
		}
	}
	for _, e := range exams {
		subject := NotAvailable
		if e.Subject != nil {
			subject = orNA(e.Subject.Name)
		}
		slip.Exams = append(slip.Exams, dto.SlipExam{
			Subject: subject,
			Type:    string(e.Exam.Type),
			Date:    formatDate(e.Exam.ExamDate),
			Time:    examWindow(e.Exam),
		})
	}
	return slip
}

func examWindow(e models.Exam) string {
	start := derefOr(e.StartTime, "")
	end := derefOr(e.EndTime, "")
	switch {
	case start == "" && end == "":
		return Dash
	case end == "":
		return start
	case start == "":
		return Dash + " " + end
	default:
		return start + " - " + end
	}
}

// EmitAwardList shapes the marks list of one exam.
func EmitAwardList(exam ExamView, rows []ResultRow, summary ExamSummary) dto.AwardList {
	out := dto.AwardList{
		ExamID:       exam.Exam.ID,
		ExamName:     orNA(exam.Exam.Name),
		ExamType:     string(exam.Exam.Type),
		ExamDate:     formatDate(exam.Exam.ExamDate),
		Subject:      NotAvailable,
		ClassName:    className(exam.Class),
		SessionName:  sessionName(exam.Session),
		MaxMarks:     exam.Exam.MaxMarks,
		Rows:         make([]dto.AwardListRow, 0, len(rows)),
	}
	if exam.Exam.PassingMarks != nil {
		pm := *exam.Exam.PassingMarks
		out.PassingMarks = &pm
	}
	if exam.Subject != nil {
		out.Subject = orNA(exam.Subject.Name)
	}
	for _, row := range rows {
		line := dto.AwardListRow{
			RollNumber:    row.Entry.RollNumber,
			StudentNumber: studentNumber(row.Student),
			StudentName:   orNA(row.Entry.Name),
			Marks:         AbsentMarks,
			Percentage:    Dash,
			Result:        ResultAbsent,
			Remarks:       Dash,
		}
		if row.Result != nil {
			line.Remarks = derefOr(row.Result.Remarks, Dash)
			if row.Result.MarksObtained != nil {
				marks := *row.Result.MarksObtained
				line.Marks = formatMarks(marks)
				line.Percentage = fmt.Sprintf("%.1f", Round1(Percentage(marks, exam.Exam.MaxMarks)))
				line.Result = ResultFail
				if Passed(marks, exam.Exam.MaxMarks, summary.PassPercentage) {
					line.Result = ResultPass
				}
			}
		}
		out.Rows = append(out.Rows, line)
	}
	out.Summary = dto.AwardListSummary{
		TotalStudents:     summary.Rows,
		Appeared:          summary.Appeared,
		Absent:            summary.Absent,
		Passed:            summary.Passed,
		Failed:            summary.Failed,
		AveragePercentage: Round1(summary.AveragePercentage),
		PassRate:          Round1(summary.PassRate()),
		HighestMarks:      Dash,
		LowestMarks:       Dash,
	}
	if summary.HighestMarks != nil {
		out.Summary.HighestMarks = formatMarks(*summary.HighestMarks)
	}
	if summary.LowestMarks != nil {
		out.Summary.LowestMarks = formatMarks(*summary.LowestMarks)
	}
	return out
}

// EmitIDCard shapes one identity card. A zero roll number prints as a dash.
func EmitIDCard(view StudentView, rollNumber int, session *models.AcademicSession) dto.IDCard {
	card := dto.IDCard{
		StudentID:     view.Student.ID,
		StudentNumber: orNA(view.Student.StudentNumber),
		StudentName:   orNA(view.Name()),
		ClassName:     className(view.Class),
		RollNumber:    Dash,
		Email:         NotAvailable,
		Phone:         NotAvailable,
		GuardianName:  derefOr(view.Student.GuardianName, NotAvailable),
		SessionName:   sessionName(session),
		ValidUntil:    NotAvailable,
	}
	if rollNumber > 0 {
		card.RollNumber = fmt.Sprintf("%d", rollNumber)
	}
	if view.Profile != nil {
		card.Email = orNA(view.Profile.Email)
		card.Phone = orNA(view.Profile.Phone)
		card.PhotoURL = derefOr(view.Profile.PhotoURL, "")
	}
	if session != nil {
		card.ValidUntil = formatDate(session.EndDate)
	}
	return card
}

// EmitInvoice shapes the printable state of one fee record. The status is
// derived from the balance at now, as on the fee report. Reconciled is false
// when the payments do not add up to the recorded paid amount.
func EmitInvoice(fee FeeView, now time.Time) dto.Invoice {
	rec := fee.Record
	balance := rec.Outstanding()
	inv := dto.Invoice{
		FeeRecordID:   rec.ID,
		StudentNumber: studentNumber(fee.Student),
		StudentName:   studentName(fee.Student),
		ClassName:     NotAvailable,
		FeeName:       NotAvailable,
		DueDate:       formatDate(rec.DueDate),
		Status:        string(models.FeeStatusFor(balance, rec.PaidAmount, rec.DueDate, now)),
		Total:         Round2(rec.TotalAmount),
		Discount:      Round2(rec.Discount),
		Paid:          Round2(rec.PaidAmount),
		Balance:       Round2(balance),
		TotalText:     formatAmount(rec.TotalAmount),
		PaidText:      formatAmount(rec.PaidAmount),
		BalanceText:   formatAmount(balance),
		Reconciled:    Round2(fee.PaymentTotal()) == Round2(rec.PaidAmount),
		Payments:      make([]dto.InvoiceLine, 0, len(fee.Payments)),
	}
	if fee.Student != nil {
		inv.ClassName = className(fee.Student.Class)
	}
	if fee.Structure != nil {
		inv.FeeName = orNA(fee.Structure.Name)
	}
	for _, p := range fee.Payments {
		inv.Payments = append(inv.Payments, dto.InvoiceLine{
			Date:          formatDate(p.PaymentDate),
			Amount:        Round2(p.Amount),
			AmountText:    formatAmount(p.Amount),
			Method:        orNA(p.Method),
			ReceiptNumber: derefOr(p.ReceiptNumber, Dash),
		})
	}
	return inv
}

// EmitFeeReport shapes a class fee report.
func EmitFeeReport(classID string, class *models.ClassRoom, rows []FeeView, summary FeeSummary, now time.Time) dto.FeeReport {
	out := dto.FeeReport{
		ClassID:   classID,
		ClassName: className(class),
		Rows:      make([]dto.FeeReportRow, 0, len(rows)),
	}
	for _, fee := range rows {
		rec := fee.Record
		balance := rec.Outstanding()
		feeName := NotAvailable
		if fee.Structure != nil {
			feeName = orNA(fee.Structure.Name)
		}
		out.Rows = append(out.Rows, dto.FeeReportRow{
			FeeRecordID:   rec.ID,
			StudentNumber: studentNumber(fee.Student),
			StudentName:   studentName(fee.Student),
			FeeName:       feeName,
			Total:         Round2(rec.TotalAmount),
			Discount:      Round2(rec.Discount),
			Paid:          Round2(rec.PaidAmount),
			Balance:       Round2(balance),
			Status:        string(models.FeeStatusFor(balance, rec.PaidAmount, rec.DueDate, now)),
		})
	}
	byStatus := make(map[string]int, len(summary.ByStatus))
	for status, count := range summary.ByStatus {
		byStatus[string(status)] = count
	}
	out.Summary = dto.FeeReportSummary{
		TotalRecords:  summary.Rows,
		TotalFees:     Round2(summary.TotalFees),
		TotalDiscount: Round2(summary.TotalDiscount),
		TotalPaid:     Round2(summary.TotalPaid),
		Balance:       Round2(summary.TotalBalance),
		PaidCount:     summary.PaidCount,
		PendingCount:  summary.PendingCount,
		ByStatus:      byStatus,
		CollectionPct: Round1(summary.CollectionRate()),
	}
	return out
}

// EmitAttendanceSheet shapes the attendance of a class on a date.
func EmitAttendanceSheet(classID string, class *models.ClassRoom, date time.Time, rows []AttendanceView, summary AttendanceSummary) dto.AttendanceSheet {
	out := dto.AttendanceSheet{
		ClassID:   classID,
		ClassName: className(class),
		Date:      formatDate(date),
		Rows:      make([]dto.AttendanceSheetRow, 0, len(rows)),
	}
	for _, row := range rows {
		out.Rows = append(out.Rows, dto.AttendanceSheetRow{
			StudentID:     row.Record.StudentID,
			StudentNumber: studentNumber(row.Student),
			StudentName:   studentName(row.Student),
			Status:        string(row.Record.Status),
			Remarks:       derefOr(row.Record.Remarks, Dash),
		})
	}
	out.Summary = dto.AttendanceSheetSummary{
		Total:          summary.Total,
		Present:        summary.Present,
		Absent:         summary.Absent,
		Late:           summary.Late,
		Excused:        summary.Excused,
		AttendanceRate: Round1(summary.AttendanceRate()),
	}
	return out
}

// EmitSearchResults shapes merged candidates.
func EmitSearchResults(candidates []Candidate) []dto.SearchResult {
	out := make([]dto.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, dto.SearchResult{
			StudentID:     c.StudentID,
			StudentNumber: derefOr(c.StudentNumber, NotAvailable),
			StudentName:   derefOr(c.Name, NotAvailable),
			ClassName:     derefOr(c.ClassName, NotAvailable),
			Email:         derefOr(c.Email, ""),
			MatchedBy:     c.MatchedBy,
		})
	}
	return out
}
