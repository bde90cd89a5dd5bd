package service

import (
	"context"

	"github.com/abac-connect/van-booking/internal/auth"
	"github.com/abac-connect/van-booking/internal/model"
)

type PaymentStore interface {
	ListReport(ctx context.Context) ([]model.PaymentReport, error)
}

// ReportService serves read-only administrative views.
type ReportService struct {
	payments PaymentStore
}

func NewReportService(payments PaymentStore) *ReportService {
	return &ReportService{payments: payments}
}

// ListPayments returns every payment with its booking and student name.
func (r *ReportService) ListPayments(ctx context.Context, s auth.Session) ([]model.PaymentReport, error) {
	if err := auth.Authorize(model.RoleAdmin, s); err != nil {
		return nil, err
	}
	rows, err := r.payments.ListReport(ctx)
	if err != nil {
		return nil, storeErr("list payments", err)
	}
	return rows, nil
}
