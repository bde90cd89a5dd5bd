package model

// PaymentReport is a payment ledger row joined with its booking and the
// booking's student.  Payments are recorded outside this service and are
// only read here.  Amount is in cents, as stored.
type PaymentReport struct {
	PaymentID   uint64 `json:"payment_id"`
	BookingID   uint64 `json:"booking_id"`
	StudentName string `json:"student_name"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
	Status      string `json:"status"`
}
