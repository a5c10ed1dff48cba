package dto

// Document view models consumed by the renderer. Field names and JSON tags are
// the renderer's input contract; renaming one is a breaking change.

// RosterEntry is one line of an ordered class roster.
type RosterEntry struct {
	RollNumber    int    `json:"rollNumber"`
	StudentID     string `json:"studentId"`
	StudentNumber string `json:"studentNumber"`
	StudentName   string `json:"studentName"`
}

// ClassRoster is the canonical roll-number ordering of an active class roster.
type ClassRoster struct {
	ClassID   string        `json:"classId"`
	ClassName string        `json:"className"`
	Total     int           `json:"total"`
	Students  []RosterEntry `json:"students"`
}

// RollNumberResponse answers a single roll-number lookup.
type RollNumberResponse struct {
	StudentID  string `json:"studentId"`
	ClassID    string `json:"classId"`
	ClassName  string `json:"className"`
	RollNumber int    `json:"rollNumber"`
	RosterSize int    `json:"rosterSize"`
}

// SlipExam is one exam line printed on a roll-number slip.
type SlipExam struct {
	Subject string `json:"subject"`
	Type    string `json:"type"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// RollSlip is one student's roll-number slip.
type RollSlip struct {
	RollNumber    int        `json:"rollNumber"`
	StudentNumber string     `json:"studentNumber"`
	StudentName   string     `json:"studentName"`
	GuardianName  string     `json:"guardianName"`
	ClassName     string     `json:"className"`
	SessionName   string     `json:"sessionName"`
	PhotoURL      string     `json:"photoUrl"`
	Exams         []SlipExam `json:"exams"`
}

// AwardListRow is one student's line on an award list.
type AwardListRow struct {
	RollNumber    int    `json:"rollNumber"`
	StudentNumber string `json:"studentNumber"`
	StudentName   string `json:"studentName"`
	Marks         string `json:"marks"`
	Percentage    string `json:"percentage"`
	Result        string `json:"result"`
	Remarks       string `json:"remarks"`
}

// AwardListSummary is the footer of an award list.
type AwardListSummary struct {
	TotalStudents     int     `json:"totalStudents"`
	Appeared          int     `json:"appeared"`
	Absent            int     `json:"absent"`
	Passed            int     `json:"passed"`
	Failed            int     `json:"failed"`
	AveragePercentage float64 `json:"averagePercentage"`
	PassRate          float64 `json:"passRate"`
	HighestMarks      string  `json:"highestMarks"`
	LowestMarks       string  `json:"lowestMarks"`
}

// AwardList is the printable marks list of one exam.
type AwardList struct {
	ExamID       string           `json:"examId"`
	ExamName     string           `json:"examName"`
	ExamType     string           `json:"examType"`
	ExamDate     string           `json:"examDate"`
	Subject      string           `json:"subject"`
	ClassName    string           `json:"className"`
	SessionName  string           `json:"sessionName"`
	MaxMarks     float64          `json:"maxMarks"`
	PassingMarks *float64         `json:"passingMarks,omitempty"`
	Rows         []AwardListRow   `json:"rows"`
	Summary      AwardListSummary `json:"summary"`
}

// IDCard is one student identity card.
type IDCard struct {
	StudentID     string `json:"studentId"`
	StudentNumber string `json:"studentNumber"`
	StudentName   string `json:"studentName"`
	ClassName     string `json:"className"`
	RollNumber    string `json:"rollNumber"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	GuardianName  string `json:"guardianName"`
	PhotoURL      string `json:"photoUrl"`
	SessionName   string `json:"sessionName"`
	ValidUntil    string `json:"validUntil"`
}

// InvoiceLine is one payment printed on an invoice.
type InvoiceLine struct {
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	AmountText    string  `json:"amountText"`
	Method        string  `json:"method"`
	ReceiptNumber string  `json:"receiptNumber"`
}

// Invoice is the printable state of one fee record.
type Invoice struct {
	FeeRecordID   string        `json:"feeRecordId"`
	StudentNumber string        `json:"studentNumber"`
	StudentName   string        `json:"studentName"`
	ClassName     string        `json:"className"`
	FeeName       string        `json:"feeName"`
	DueDate       string        `json:"dueDate"`
	Status        string        `json:"status"`
	Total         float64       `json:"total"`
	Discount      float64       `json:"discount"`
	Paid          float64       `json:"paid"`
	Balance       float64       `json:"balance"`
	TotalText     string        `json:"totalText"`
	PaidText      string        `json:"paidText"`
	BalanceText   string        `json:"balanceText"`
	Reconciled    bool          `json:"reconciled"`
	Payments      []InvoiceLine `json:"payments"`
}

// FeeReportRow is one fee record line of a class fee report.
type FeeReportRow struct {
	FeeRecordID   string  `json:"feeRecordId"`
	StudentNumber string  `json:"studentNumber"`
	StudentName   string  `json:"studentName"`
	FeeName       string  `json:"feeName"`
	Total         float64 `json:"total"`
	Discount      float64 `json:"discount"`
	Paid          float64 `json:"paid"`
	Balance       float64 `json:"balance"`
	Status        string  `json:"status"`
}

// FeeReportSummary reconciles with the report rows.
type FeeReportSummary struct {
	TotalRecords  int            `json:"totalRecords"`
	TotalFees     float64        `json:"totalFees"`
	TotalDiscount float64        `json:"totalDiscount"`
	TotalPaid     float64        `json:"totalPaid"`
	Balance       float64        `json:"balance"`
	PaidCount     int            `json:"paidCount"`
	PendingCount  int            `json:"pendingCount"`
	ByStatus      map[string]int `json:"byStatus"`
	CollectionPct float64        `json:"collectionPct"`
}

// FeeReport is the fee position of a class.
type FeeReport struct {
	ClassID   string           `json:"classId"`
	ClassName string           `json:"className"`
	Rows      []FeeReportRow   `json:"rows"`
	Summary   FeeReportSummary `json:"summary"`
}

// AttendanceSheetRow is one student's attendance on a date.
type AttendanceSheetRow struct {
	StudentID     string `json:"studentId"`
	StudentNumber string `json:"studentNumber"`
	StudentName   string `json:"studentName"`
	Status        string `json:"status"`
	Remarks       string `json:"remarks"`
}

// AttendanceSheetSummary counts statuses on the sheet.
type AttendanceSheetSummary struct {
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Excused        int     `json:"excused"`
	AttendanceRate float64 `json:"attendanceRate"`
}

// AttendanceSheet is the daily attendance of a class.
type AttendanceSheet struct {
	ClassID   string                 `json:"classId"`
	ClassName string                 `json:"className"`
	Date      string                 `json:"date"`
	Rows      []AttendanceSheetRow   `json:"rows"`
	Summary   AttendanceSheetSummary `json:"summary"`
}

// SearchResult is one deduplicated student search hit.
type SearchResult struct {
	StudentID     string   `json:"studentId"`
	StudentNumber string   `json:"studentNumber"`
	StudentName   string   `json:"studentName"`
	ClassName     string   `json:"className"`
	Email         string   `json:"email"`
	MatchedBy     []string `json:"matchedBy"`
}

// ReminderResult reports dispatch counts for fee reminders.
type ReminderResult struct {
	ClassID    string `json:"classId"`
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
}
