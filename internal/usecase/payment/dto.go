package payment

import (
	"time"

	domainPayment "dojo-admin/internal/domain/payment"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

type CreatePaymentRequest struct {
	UserID      uuid.UUID `json:"id_usuario" validate:"required"`
	Amount      float64   `json:"monto" validate:"required,gt=0"`
	Concept     string    `json:"concepto" validate:"required,min=2,max=255"`
	Status      string    `json:"estatus_pago" validate:"omitempty,oneof=Pendiente Pagado Vencido"`
	DueDate     string    `json:"fecha_vencimiento" validate:"required,datetime=2006-01-02"`
	PaymentType *string   `json:"tipo_pago" validate:"omitempty,max=50"`
}

type UpdateStatusRequest struct {
	Status string `json:"estatus_pago" validate:"required,oneof=Pendiente Pagado Vencido"`
}

type PaymentResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"id_usuario"`
	Amount      float64    `json:"monto"`
	Concept     string     `json:"concepto"`
	Status      string     `json:"estatus_pago"`
	DueDate     string     `json:"fecha_vencimiento"`
	PaidAt      *time.Time `json:"fecha_pago"`
	PaymentType *string    `json:"tipo_pago"`
	CreatedAt   time.Time  `json:"fecha_registro"`
}

type PaymentListingResponse struct {
	*PaymentResponse
	StudentName string `json:"studentName"`
}

func ToPaymentResponse(p *domainPayment.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		Concept:     p.Concept,
		Status:      string(p.Status),
		DueDate:     p.DueDate.Format(DateLayout),
		PaidAt:      p.PaidAt,
		PaymentType: p.PaymentType,
		CreatedAt:   p.CreatedAt,
	}
}

func ToPaymentListingResponse(l *domainPayment.Listing) *PaymentListingResponse {
	return &PaymentListingResponse{
		PaymentResponse: ToPaymentResponse(&l.Payment),
		StudentName:     l.StudentName,
	}
}
