package loan

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/srivaari-capital/backend/internal/store"
)

var (
	// ErrMissingField indicates a required application field was absent or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidAmount indicates loan_amount was present but not a usable number.
	ErrInvalidAmount = errors.New("loan amount must be a positive number")
)

// SubmitInput carries a loan application as parsed at the HTTP boundary.
// MonthlyIncome stays nil when the applicant omitted it; it is never stored
// as a sentinel value.
type SubmitInput struct {
	UserID        int64
	Name          string
	Phone         string
	Email         string
	Address       string
	LoanAmount    float64
	Purpose       string
	MonthlyIncome *float64
}

// Service manages loan applications.
type Service struct {
	records store.Store
}

// NewService creates a new loan application service.
func NewService(records store.Store) *Service {
	return &Service{records: records}
}

// Submit appends one application tagged with the submitting user's id.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (store.Application, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || phone == "" {
		return store.Application{}, ErrMissingField
	}
	if in.LoanAmount <= 0 {
		return store.Application{}, ErrInvalidAmount
	}

	var app store.Application
	err := s.records.Update(ctx, func(snap *store.Snapshot) error {
		app = store.Application{
			ID:            snap.NextApplicationID(),
			UserID:        in.UserID,
			Name:          name,
			Phone:         phone,
			Email:         strings.TrimSpace(in.Email),
			Address:       strings.TrimSpace(in.Address),
			LoanAmount:    in.LoanAmount,
			Purpose:       strings.TrimSpace(in.Purpose),
			MonthlyIncome: in.MonthlyIncome,
			CreatedAt:     time.Now().UTC(),
		}
		snap.Applications = append(snap.Applications, app)
		return nil
	})
	if err != nil {
		return store.Application{}, err
	}

	return app, nil
}

// ListAll returns every persisted application in submission order.
func (s *Service) ListAll(ctx context.Context) ([]store.Application, error) {
	snap, err := s.records.Load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Applications, nil
}
