package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-report-engine/internal/assembly"
	"github.com/noah-isme/sma-report-engine/internal/dto"
	"github.com/noah-isme/sma-report-engine/internal/models"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
)

// Dispatcher delivers one title and body to a list of recipients.
type Dispatcher interface {
	Dispatch(ctx context.Context, recipients []string, title, body string) (models.DispatchResult, error)
}

type reminderLedger interface {
	LastReminded(ctx context.Context, feeRecordID string) (time.Time, error)
	MarkReminded(ctx context.Context, feeRecordID string, at time.Time, ttl time.Duration) error
}

// ReminderRequest tunes one fee reminder run.
type ReminderRequest struct {
	Title      string  `json:"title" validate:"omitempty,max=120"`
	Message    string  `json:"message" validate:"omitempty,max=1000"`
	MinBalance float64 `json:"minBalance" validate:"gte=0"`
	Force      bool    `json:"force"`
}

const defaultReminderTitle = "Fee payment reminder"

// FeeService assembles fee reports and invoices and sends balance reminders.
type FeeService struct {
	f          *fetcher
	dispatcher Dispatcher
	ledger     reminderLedger
	cooldown   time.Duration
	validator  *validator.Validate
}

func NewFeeService(gw Gateway, opts AssemblyOptions, dispatcher Dispatcher, ledger reminderLedger, cooldown time.Duration, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	return &FeeService{
		f:          newFetcher(gw, opts, metrics, logger),
		dispatcher: dispatcher,
		ledger:     ledger,
		cooldown:   cooldown,
		validator:  validate,
	}
}

// classFees loads the fee ledger of the active students of a class and
// correlates it with students, profiles and fee definitions.
func (s *FeeService) classFees(ctx context.Context, classID string) (*models.ClassRoom, []assembly.FeeView, error) {
	students, err := s.f.activeStudents(ctx, classID)
	if err != nil {
		return nil, nil, err
	}
	studentIDs := make([]string, 0, len(students))
	for _, st := range students {
		studentIDs = append(studentIDs, st.ID)
	}
	records, err := fetch(ctx, s.f, "fee_record", idFilter("student_id", studentIDs), func(ctx context.Context) ([]models.FeeRecord, error) {
		return s.f.gw.FeeRecords.ListByStudentIDs(ctx, studentIDs)
	})
	if err != nil {
		return nil, nil, err
	}
	structureIDs := make([]string, 0, len(records))
	for _, r := range records {
		structureIDs = append(structureIDs, r.FeeStructureID)
	}

	dir, err := s.f.directory(ctx, students, related{classIDs: []string{classID}, feeStructureIDs: structureIDs})
	if err != nil {
		return nil, nil, err
	}
	class := dir.Class(classID)
	if class == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	views, err := dir.Fees(records, nil)
	if err != nil {
		return nil, nil, s.f.assemblyError(err)
	}
	return class, views, nil
}

// ClassReport returns the fee position of a class with totals that
// reconcile with the rows.
func (s *FeeService) ClassReport(ctx context.Context, classID string) (*dto.FeeReport, error) {
	if err := requireID("class id", classID); err != nil {
		return nil, err
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("fee_report", time.Now())

	class, views, err := s.classFees(ctx, classID)
	if err != nil {
		return nil, err
	}
	now := s.f.now()
	report := assembly.EmitFeeReport(classID, class, views, assembly.SummarizeFees(views, now), now)
	return &report, nil
}

// Invoice returns the printable state of one fee record with its payments.
func (s *FeeService) Invoice(ctx context.Context, feeRecordID string) (*dto.Invoice, error) {
	if err := requireID("fee record id", feeRecordID); err != nil {
		return nil, err
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("invoice", time.Now())

	record, err := fetchOne(ctx, s.f, "fee_record", feeRecordID, s.f.gw.FeeRecords.FindByID)
	if err != nil {
		return nil, err
	}

	var (
		students []models.Student
		payments []models.Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = fetch(gctx, s.f, "student", "id="+record.StudentID, func(ctx context.Context) ([]models.Student, error) {
			return s.f.gw.Students.ListByIDs(ctx, []string{record.StudentID})
		})
		return err
	})
	g.Go(func() (err error) {
		payments, err = fetch(gctx, s.f, "payment", "fee_record_id="+feeRecordID, func(ctx context.Context) ([]models.Payment, error) {
			return s.f.gw.Payments.ListByFeeRecordIDs(ctx, []string{feeRecordID})
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dir, err := s.f.directory(ctx, students, related{feeStructureIDs: []string{record.FeeStructureID}})
	if err != nil {
		return nil, err
	}
	views, err := dir.Fees([]models.FeeRecord{*record}, payments)
	if err != nil {
		return nil, s.f.assemblyError(err)
	}
	invoice := assembly.EmitInvoice(views[0], s.f.now())
	if !invoice.Reconciled {
		s.f.logger.Warn("invoice payments do not reconcile",
			zap.String("fee_record_id", feeRecordID),
			zap.Float64("paid_amount", record.PaidAmount),
			zap.Float64("payment_total", views[0].PaymentTotal()),
		)
	}
	return &invoice, nil
}

// SendReminders notifies the students of a class whose balance exceeds
// MinBalance. Records reminded within the cooldown are skipped unless Force
// is set, as are students without an email address.
func (s *FeeService) SendReminders(ctx context.Context, classID string, req ReminderRequest) (*dto.ReminderResult, error) {
	if err := requireID("class id", classID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reminder payload")
	}
	if s.dispatcher == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "notifications are disabled")
	}
	ctx, cancel := s.f.scope(ctx)
	defer cancel()
	defer s.f.observe("fee_reminders", time.Now())

	_, views, err := s.classFees(ctx, classID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultReminderTitle
	}
	now := s.f.now()
	result := &dto.ReminderResult{ClassID: classID}
	type target struct {
		fee     assembly.FeeView
		email   string
		balance float64
	}
	targets := make([]target, 0, len(views))
	for _, fee := range views {
		balance := fee.Record.Outstanding()
		if balance <= 0 || balance <= req.MinBalance {
			continue
		}
		result.Recipients++

		email := ""
		if fee.Student != nil && fee.Student.Profile != nil {
			email = strings.TrimSpace(fee.Student.Profile.Email)
		}
		if email == "" || (!req.Force && s.remindedRecently(ctx, fee.Record.ID, now)) {
			result.Skipped++
			continue
		}
		targets = append(targets, target{fee: fee, email: email, balance: balance})
	}

	var delivered models.DispatchResult
	for i, t := range targets {
		fee := t.fee
		sent, err := s.dispatcher.Dispatch(ctx, []string{t.email}, title, reminderBody(fee, t.balance, req.Message))
		if err != nil {
			s.f.logger.Error("dispatch fee reminder failed", zap.String("fee_record_id", fee.Record.ID), zap.Error(err))
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// This record and every one after it count as failed.
				delivered.Sent += sent.Sent
				delivered.Failed += len(targets) - i - sent.Sent
				s.f.logger.Warn("fee reminders interrupted",
					zap.String("class_id", classID),
					zap.Int("unsent", len(targets)-i-sent.Sent),
				)
				break
			}
			sent.Failed++
		}
		delivered.Sent += sent.Sent
		delivered.Failed += sent.Failed
		if sent.Sent > 0 && s.ledger != nil {
			if err := s.ledger.MarkReminded(ctx, fee.Record.ID, now, s.cooldown); err != nil {
				s.f.logger.Warn("record fee reminder failed", zap.String("fee_record_id", fee.Record.ID), zap.Error(err))
			}
		}
	}

	result.Sent = delivered.Sent
	result.Failed = delivered.Failed
	s.f.metrics.RecordDispatch(delivered, result.Skipped)
	s.f.logger.Info("fee reminders dispatched",
		zap.String("class_id", classID),
		zap.Int("recipients", result.Recipients),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *FeeService) remindedRecently(ctx context.Context, feeRecordID string, now time.Time) bool {
	if s.ledger == nil || s.cooldown <= 0 {
		return false
	}
	last, err := s.ledger.LastReminded(ctx, feeRecordID)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.f.logger.Warn("read reminder ledger failed", zap.String("fee_record_id", feeRecordID), zap.Error(err))
		}
		return false
	}
	return now.Sub(last) < s.cooldown
}

func reminderBody(fee assembly.FeeView, balance float64, note string) string {
	name := assembly.NotAvailable
	if fee.Student != nil && fee.Student.Name() != "" {
		name = fee.Student.Name()
	}
	feeName := assembly.NotAvailable
	if fee.Structure != nil && fee.Structure.Name != "" {
		feeName = fee.Structure.Name
	}
	body := fmt.Sprintf("Dear %s, an outstanding balance of %.2f for %s is due on %s.",
		name, assembly.Round2(balance), feeName, fee.Record.DueDate.Format("2006-01-02"))
	if note = strings.TrimSpace(note); note != "" {
		body += " " + note
	}
	return body
}
