package models

import "time"

// FeeStatus is derived from the outstanding balance of a fee record.
type FeeStatus string

const (
	FeeStatusPaid    FeeStatus = "paid"
	FeeStatusPartial FeeStatus = "partial"
	FeeStatusPending FeeStatus = "pending"
	FeeStatusOverdue FeeStatus = "overdue"
)

// FeeStructure defines a fee charged for a session.
type FeeStructure struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Amount    float64   `db:"amount" json:"amount"`
	SessionID string    `db:"session_id" json:"session_id"`
	DueDate   time.Time `db:"due_date" json:"due_date"`
}

// FeeRecord is the ledger row of one fee for one student.
type FeeRecord struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	FeeStructureID string    `db:"fee_structure_id" json:"fee_structure_id"`
	TotalAmount    float64   `db:"total_amount" json:"total_amount"`
	Discount       float64   `db:"discount" json:"discount"`
	PaidAmount     float64   `db:"paid_amount" json:"paid_amount"`
	Balance        float64   `db:"balance" json:"balance"`
	Status         FeeStatus `db:"status" json:"status"`
	DueDate        time.Time `db:"due_date" json:"due_date"`
}

// Outstanding returns total minus discount minus paid.
func (f FeeRecord) Outstanding() float64 {
	return f.TotalAmount - f.Discount - f.PaidAmount
}

// Payment is an append-only event against a fee record.
type Payment struct {
	ID            string    `db:"id" json:"id"`
	FeeRecordID   string    `db:"fee_record_id" json:"fee_record_id"`
	PaymentDate   time.Time `db:"payment_date" json:"payment_date"`
	Amount        float64   `db:"amount" json:"amount"`
	Method        string    `db:"method" json:"method"`
	ReceiptNumber *string   `db:"receipt_number" json:"receipt_number,omitempty"`
}

// FeeStatusFor derives the status of a fee from its balance.
func FeeStatusFor(balance, paid float64, due, now time.Time) FeeStatus {
	switch {
	case balance <= 0:
		return FeeStatusPaid
	case paid > 0:
		return FeeStatusPartial
	case !due.IsZero() && now.After(due):
		return FeeStatusOverdue
	default:
		return FeeStatusPending
	}
}
