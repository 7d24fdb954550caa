package contact

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kicon/kiconapi/internal/apperr"
	"github.com/kicon/kiconapi/internal/validation"
)

const (
	FieldID          = "_id"
	FieldStatus      = "status"
	FieldInquiryType = "inquiryType"
	FieldCreatedDate = "createdDate"
	FieldLastUpdated = "lastUpdated"
)

var ErrNotFound = fmt.Errorf("contact inquiry %w", apperr.ErrNotFound)

type InquiryType string

const (
	InquiryGeneral       InquiryType = "general"
	InquiryRegistration  InquiryType = "registration"
	InquiryAccommodation InquiryType = "accommodation"
	InquiryTechnical     InquiryType = "technical"
)

func InquiryTypes() []InquiryType {
	return []InquiryType{InquiryGeneral, InquiryRegistration, InquiryAccommodation, InquiryTechnical}
}

type Status string

const (
	StatusOpen      Status = "open"
	StatusResponded Status = "responded"
	StatusClosed    Status = "closed"
)

func Statuses() []Status {
	return []Status{StatusOpen, StatusResponded, StatusClosed}
}

type Contact struct {
	ID          string      `json:"id" bson:"_id"`
	Name        string      `json:"name" bson:"name"`
	Email       string      `json:"email" bson:"email"`
	Phone       *string     `json:"phone" bson:"phone"`
	Subject     string      `json:"subject" bson:"subject"`
	Message     string      `json:"message" bson:"message"`
	InquiryType InquiryType `json:"inquiryType" bson:"inquiryType"`
	Status      Status      `json:"status" bson:"status"`
	CreatedDate time.Time   `json:"createdDate" bson:"createdDate"`
	LastUpdated time.Time   `json:"lastUpdated" bson:"lastUpdated"`
}

type CreateRequest struct {
	Name        string      `json:"name" validate:"required,min=2,max=100"`
	Email       string      `json:"email" validate:"required,email"`
	Phone       *string     `json:"phone" validate:"omitempty,phone"`
	Subject     string      `json:"subject" validate:"required,min=5,max=200"`
	Message     string      `json:"message" validate:"required,min=10,max=1000"`
	InquiryType InquiryType `json:"inquiryType" validate:"omitempty,oneof=general registration accommodation technical"`
}

type UpdateRequest struct {
	Status *Status `json:"status" validate:"omitempty,oneof=open responded closed"`
}

type Filter struct {
	Status       *Status
	InquiryType  *InquiryType
	CreatedSince *time.Time
	Skip         int
	Limit        int
}

type Changes map[string]any

func (r CreateRequest) Validate() error {
	return apperr.NewValidationError(validation.Check(r)...).OrNil()
}

func (u UpdateRequest) Validate() error {
	return apperr.NewValidationError(validation.Check(u)...).OrNil()
}

func (u UpdateRequest) IsEmpty() bool {
	return u.Status == nil
}

func (u UpdateRequest) Changes(cur Contact) Changes {
	ch := Changes{}

	if u.Status != nil && *u.Status != cur.Status {
		ch[FieldStatus] = *u.Status
	}

	return ch
}

func New(req CreateRequest, now time.Time) Contact {
	kind := req.InquiryType
	if kind == "" {
		kind = InquiryGeneral
	}

	return Contact{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Subject:     req.Subject,
		Message:     req.Message,
		InquiryType: kind,
		Status:      StatusOpen,
		CreatedDate: now.UTC(),
		LastUpdated: now.UTC(),
	}
}
