package handler

import (
	"time"

	"bizdir/internal/reconcile"
)

type claimDTO struct {
	ID         string     `json:"id"`
	BusinessID string     `json:"business_id"`
	UserID     string     `json:"user_id"`
	Contact    contactDTO `json:"contact"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

func claimToDTO(c *reconcile.ClaimRequest) claimDTO {
	return claimDTO{
		ID:         c.ID.String(),
		BusinessID: c.BusinessID.String(),
		UserID:     c.UserID.String(),
		Contact:    contactDTO{Name: c.Contact.Name, Email: c.Contact.Email, Phone: c.Contact.Phone},
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		ReviewedAt: c.ReviewedAt,
	}
}

type registrationDTO struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Business          businessPayloadDTO `json:"business"`
	Contact           contactDTO         `json:"contact"`
	Status            string             `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
	ReviewedAt        *time.Time         `json:"reviewed_at,omitempty"`
	CreatedBusinessID *string            `json:"created_business_id,omitempty"`
}

func registrationToDTO(reg *reconcile.RegistrationRequest) registrationDTO {
	dto := registrationDTO{
		ID:     reg.ID.String(),
		UserID: reg.UserID.String(),
		Business: businessPayloadDTO{
			Name:       reg.Payload.Name,
			Instagram:  reg.Payload.Instagram,
			CityID:     reg.Payload.CityID.String(),
			CategoryID: reg.Payload.CategoryID.String(),
			Notes:      reg.Payload.Notes,
		},
		Contact:    contactDTO{Name: reg.Contact.Name, Email: reg.Contact.Email, Phone: reg.Contact.Phone},
		Status:     string(reg.Status),
		CreatedAt:  reg.CreatedAt,
		ReviewedAt: reg.ReviewedAt,
	}
	if reg.Payload.SubcategoryID != nil {
		dto.Business.SubcategoryID = reg.Payload.SubcategoryID.String()
	}
	if reg.CreatedBusinessID != nil {
		s := reg.CreatedBusinessID.String()
		dto.CreatedBusinessID = &s
	}
	return dto
}
