package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-report-engine/internal/models"
)

const feeRecordColumns = `id, student_id, fee_structure_id, total_amount, discount, paid_amount, balance, status, due_date`

// FeeRecordRepository reads the fee ledger.
type FeeRecordRepository struct {
	db *sqlx.DB
}

func NewFeeRecordRepository(db *sqlx.DB) *FeeRecordRepository {
	return &FeeRecordRepository{db: db}
}

// FindByID fetches one fee record. sql.ErrNoRows is returned unwrapped.
func (r *FeeRecordRepository) FindByID(ctx context.Context, id string) (*models.FeeRecord, error) {
	var record models.FeeRecord
	if err := r.db.GetContext(ctx, &record, "SELECT "+feeRecordColumns+" FROM fee_records WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByStudentIDs returns fee records ordered by due date.
func (r *FeeRecordRepository) ListByStudentIDs(ctx context.Context, studentIDs []string) ([]models.FeeRecord, error) {
	query := "SELECT " + feeRecordColumns + " FROM fee_records WHERE student_id = ANY($1) ORDER BY due_date, id"
	records, err := selectByIDs[models.FeeRecord](ctx, r.db, query, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("list fee records: %w", err)
	}
	return records, nil
}

// FeeStructureRepository reads fee definitions.
type FeeStructureRepository struct {
	db *sqlx.DB
}

func NewFeeStructureRepository(db *sqlx.DB) *FeeStructureRepository {
	return &FeeStructureRepository{db: db}
}

func (r *FeeStructureRepository) ListByIDs(ctx context.Context, ids []string) ([]models.FeeStructure, error) {
	structures, err := selectByIDs[models.FeeStructure](ctx, r.db, "SELECT id, name, amount, session_id, due_date FROM fee_structures WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("list fee structures: %w", err)
	}
	return structures, nil
}

// PaymentRepository reads payment events.
type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ListByFeeRecordIDs(ctx context.Context, feeRecordIDs []string) ([]models.Payment, error) {
	const query = `SELECT id, fee_record_id, payment_date, amount, method, receipt_number FROM payments WHERE fee_record_id = ANY($1)`
	payments, err := selectByIDs[models.Payment](ctx, r.db, query, feeRecordIDs)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
