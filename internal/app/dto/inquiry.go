package dto

import (
	"time"

	"stayquote/internal/domain/inquiry"
	"stayquote/internal/domain/shared/daterange"
)

type Inquiry struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	CheckIn         string    `json:"check_in"`
	CheckOut        string    `json:"check_out"`
	Nights          int       `json:"nights"`
	Guests          int       `json:"guests"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	PrefersWhatsApp bool      `json:"prefers_whatsapp"`
	Pets            bool      `json:"pets"`
	PetsDetails     string    `json:"pets_details,omitempty"`
	Event           bool      `json:"event"`
	EventDetails    string    `json:"event_details,omitempty"`
	ArrivalTime     string    `json:"arrival_time,omitempty"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	SourcePage      string    `json:"source_page,omitempty"`
	Estimate        *Estimate `json:"estimate"`
	CreatedAt       string    `json:"created_at"`
	UpdatedAt       string    `json:"updated_at"`
}

type InquiryPage struct {
	Items  []Inquiry `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

func MapInquiry(inq *inquiry.Inquiry) Inquiry {
	if inq == nil {
		return Inquiry{}
	}
	return Inquiry{
		ID:              string(inq.ID),
		Status:          string(inq.Status),
		CheckIn:         daterange.Format(inq.Stay.Start),
		CheckOut:        daterange.Format(inq.Stay.End),
		Nights:          inq.Nights(),
		Guests:          inq.Guests,
		FullName:        inq.Contact.FullName,
		Email:           inq.Contact.Email,
		Phone:           inq.Contact.Phone,
		PrefersWhatsApp: inq.Contact.PrefersWhatsApp,
		Pets:            inq.Extras.Pets,
		PetsDetails:     inq.Extras.PetsDetails,
		Event:           inq.Extras.Event,
		EventDetails:    inq.Extras.EventDetails,
		ArrivalTime:     inq.Extras.ArrivalTime,
		SpecialRequests: inq.Extras.SpecialRequests,
		SourcePage:      inq.Extras.SourcePage,
		Estimate:        MapEstimate(inq.Estimate),
		CreatedAt:       formatTimestamp(inq.CreatedAt),
		UpdatedAt:       formatTimestamp(inq.UpdatedAt),
	}
}

func MapInquiries(items []*inquiry.Inquiry) []Inquiry {
	out := make([]Inquiry, 0, len(items))
	for _, inq := range items {
		out = append(out, MapInquiry(inq))
	}
	return out
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
