package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	availabilityapp "stayquote/internal/app/handlers/availability"
	contentapp "stayquote/internal/app/handlers/content"
	inquiryapp "stayquote/internal/app/handlers/inquiries"
	"stayquote/internal/app/queries"
	"stayquote/internal/domain/shared/daterange"
)

type PublicHTTP interface {
	Availability(c *gin.Context)
	Quote(c *gin.Context)
	SubmitQuoteRequest(c *gin.Context)
	SiteContent(c *gin.Context)
}

// PublicHandler serves the guest-facing calendar, live quote and inquiry form.
type PublicHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h PublicHandler) Availability(c *gin.Context) {
	from, err := optionalDay(c.Query("from"))
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	to, err := optionalDay(c.Query("to"))
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	result, err := queries.Ask[availabilityapp.GetAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries,
		availabilityapp.GetAvailabilityQuery{From: from, To: to})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SiteContent returns the editable page texts keyed by content key.
func (h PublicHandler) SiteContent(c *gin.Context) {
	result, err := queries.Ask[contentapp.SiteContentQuery, dto.SiteContent](c.Request.Context(), h.Queries, contentapp.SiteContentQuery{})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PublicHandler) Quote(c *gin.Context) {
	checkIn, err := requiredDay("check_in", c.Query("check_in"))
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	checkOut, err := requiredDay("check_out", c.Query("check_out"))
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	result, err := queries.Ask[availabilityapp.CheckStayQuery, dto.Quote](c.Request.Context(), h.Queries,
		availabilityapp.CheckStayQuery{CheckIn: checkIn, CheckOut: checkOut})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type quoteRequestBody struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Guests          int    `json:"guests"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	SpecialRequests string `json:"special_requests"`
	PrefersWhatsApp bool   `json:"prefers_whatsapp"`
	Pets            bool   `json:"pets"`
	PetsDetails     string `json:"pets_details"`
	Event           bool   `json:"event"`
	EventDetails    string `json:"event_details"`
	ArrivalTime     string `json:"arrival_time"`
	SourcePage      string `json:"source_page"`
}

func (h PublicHandler) SubmitQuoteRequest(c *gin.Context) {
	var req quoteRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.Logger, badRequest("invalid request body"))
		return
	}
	checkIn, err := requiredDay("check_in", req.CheckIn)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	checkOut, err := requiredDay("check_out", req.CheckOut)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	cmd := inquiryapp.SubmitInquiryCommand{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Guests:          req.Guests,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		SpecialRequests: req.SpecialRequests,
		PrefersWhatsApp: req.PrefersWhatsApp,
		Pets:            req.Pets,
		PetsDetails:     req.PetsDetails,
		Event:           req.Event,
		EventDetails:    req.EventDetails,
		ArrivalTime:     req.ArrivalTime,
		SourcePage:      req.SourcePage,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader("Idempotency-Key")),
	}
	result, err := commands.Dispatch[inquiryapp.SubmitInquiryCommand, *inquiryapp.SubmitInquiryResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": result.ID, "estimate": result.Estimate})
}

func optionalDay(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return daterange.ParseDay(raw)
}

func requiredDay(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, badRequest(field + " is required")
	}
	return daterange.ParseDay(raw)
}

var _ PublicHTTP = PublicHandler{}
