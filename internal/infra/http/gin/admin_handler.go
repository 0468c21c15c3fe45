package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	catalogapp "stayquote/internal/app/handlers/catalog"
	contentapp "stayquote/internal/app/handlers/content"
	inquiryapp "stayquote/internal/app/handlers/inquiries"
	"stayquote/internal/app/queries"
	"stayquote/internal/domain/shared/daterange"
)

type AdminHTTP interface {
	ListBlockedDates(c *gin.Context)
	AddBlockedDates(c *gin.Context)
	DeleteBlockedDates(c *gin.Context)
	ListStayRules(c *gin.Context)
	AddStayRule(c *gin.Context)
	DeleteStayRule(c *gin.Context)
	ListPricingSeasons(c *gin.Context)
	AddPricingSeason(c *gin.Context)
	DeletePricingSeason(c *gin.Context)
	ListQuoteRequests(c *gin.Context)
	UpdateQuoteRequestStatus(c *gin.Context)
	ListContent(c *gin.Context)
	PutContent(c *gin.Context)
}

// AdminHandler manages the catalog and the quote inbox. Authorization happens on the buses.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AdminHandler) ListBlockedDates(c *gin.Context) {
	window, err := listWindow(c)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	result, err := queries.Ask[catalogapp.ListBlockedRangesQuery, []dto.BlockedRange](c.Request.Context(), h.Queries,
		catalogapp.ListBlockedRangesQuery{Window: window})
	h.reply(c, http.StatusOK, result, err)
}

type blockedDatesBody struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (h AdminHandler) AddBlockedDates(c *gin.Context) {
	var req blockedDatesBody
	if !h.bind(c, &req) {
		return
	}
	start, end, err := bodyRange(req.StartDate, req.EndDate)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	result, err := commands.Dispatch[catalogapp.AddBlockedRangeCommand, dto.BlockedRange](c.Request.Context(), h.Commands,
		catalogapp.AddBlockedRangeCommand{StartDate: start, EndDate: end, Reason: req.Reason})
	h.reply(c, http.StatusCreated, result, err)
}

func (h AdminHandler) DeleteBlockedDates(c *gin.Context) {
	result, err := commands.Dispatch[catalogapp.DeleteBlockedRangeCommand, dto.BlockedRange](c.Request.Context(), h.Commands,
		catalogapp.DeleteBlockedRangeCommand{ID: c.Param("id")})
	h.reply(c, http.StatusOK, result, err)
}

func (h AdminHandler) ListStayRules(c *gin.Context) {
	window, err := listWindow(c)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	result, err := queries.Ask[catalogapp.ListStayRulesQuery, []dto.StayRule](c.Request.Context(), h.Queries,
		catalogapp.ListStayRulesQuery{Window: window})
	h.reply(c, http.StatusOK, result, err)
}

type stayRuleBody struct {
	Name               string `json:"name"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	Priority           int    `json:"priority"`
	MinNights          int    `json:"min_nights"`
	EnforceExactNights bool   `json:"enforce_exact_nights"`
	ExactNights        *int   `json:"exact_nights"`
	AllowedCheckInDOW  []int  `json:"allowed_check_in_dow"`
	AllowedCheckOutDOW []int  `json:"allowed_check_out_dow"`
}

func (h AdminHandler) AddStayRule(c *gin.Context) {
	var req stayRuleBody
	if !h.bind(c, &req) {
		return
	}
	start, end, err := bodyRange(req.StartDate, req.EndDate)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	cmd := catalogapp.AddStayRuleCommand{
		Name:               req.Name,
		StartDate:          start,
		EndDate:            end,
		Priority:           req.Priority,
		MinNights:          req.MinNights,
		EnforceExactNights: req.EnforceExactNights,
		ExactNights:        req.ExactNights,
		AllowedCheckIn:     req.AllowedCheckInDOW,
		AllowedCheckOut:    req.AllowedCheckOutDOW,
	}
	result, err := commands.Dispatch[catalogapp.AddStayRuleCommand, dto.StayRule](c.Request.Context(), h.Commands, cmd)
	h.reply(c, http.StatusCreated, result, err)
}

func (h AdminHandler) DeleteStayRule(c *gin.Context) {
	result, err := commands.Dispatch[catalogapp.DeleteStayRuleCommand, dto.StayRule](c.Request.Context(), h.Commands,
		catalogapp.DeleteStayRuleCommand{ID: c.Param("id")})
	h.reply(c, http.StatusOK, result, err)
}

func (h AdminHandler) ListPricingSeasons(c *gin.Context) {
	window, err := listWindow(c)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	result, err := queries.Ask[catalogapp.ListSeasonsQuery, []dto.PricingSeason](c.Request.Context(), h.Queries,
		catalogapp.ListSeasonsQuery{Window: window})
	h.reply(c, http.StatusOK, result, err)
}

type pricingSeasonBody struct {
	Name       string   `json:"name"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Currency   string   `json:"currency"`
	NightlyMin *float64 `json:"nightly_min"`
	NightlyMax *float64 `json:"nightly_max"`
}

func (h AdminHandler) AddPricingSeason(c *gin.Context) {
	var req pricingSeasonBody
	if !h.bind(c, &req) {
		return
	}
	start, end, err := bodyRange(req.StartDate, req.EndDate)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	cmd := catalogapp.AddSeasonCommand{
		Name:       req.Name,
		StartDate:  start,
		EndDate:    end,
		Currency:   req.Currency,
		NightlyMin: req.NightlyMin,
		NightlyMax: req.NightlyMax,
	}
	result, err := commands.Dispatch[catalogapp.AddSeasonCommand, dto.PricingSeason](c.Request.Context(), h.Commands, cmd)
	h.reply(c, http.StatusCreated, result, err)
}

func (h AdminHandler) DeletePricingSeason(c *gin.Context) {
	result, err := commands.Dispatch[catalogapp.DeleteSeasonCommand, dto.PricingSeason](c.Request.Context(), h.Commands,
		catalogapp.DeleteSeasonCommand{ID: c.Param("id")})
	h.reply(c, http.StatusOK, result, err)
}

func (h AdminHandler) ListQuoteRequests(c *gin.Context) {
	limit, err := parseIntWithDefault(c.Query("limit"), inquiryapp.DefaultPageSize)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	offset, err := parseIntWithDefault(c.Query("offset"), 0)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	result, err := queries.Ask[inquiryapp.ListInquiriesQuery, dto.InquiryPage](c.Request.Context(), h.Queries,
		inquiryapp.ListInquiriesQuery{Status: c.Query("status"), Limit: limit, Offset: offset})
	h.reply(c, http.StatusOK, result, err)
}

type statusBody struct {
	Status string `json:"status"`
}

func (h AdminHandler) UpdateQuoteRequestStatus(c *gin.Context) {
	var req statusBody
	if !h.bind(c, &req) {
		return
	}
	result, err := commands.Dispatch[inquiryapp.UpdateStatusCommand, dto.Inquiry](c.Request.Context(), h.Commands,
		inquiryapp.UpdateStatusCommand{ID: c.Param("id"), Status: req.Status})
	h.reply(c, http.StatusOK, result, err)
}

func (h AdminHandler) ListContent(c *gin.Context) {
	result, err := queries.Ask[contentapp.ListFieldsQuery, []dto.ContentField](c.Request.Context(), h.Queries, contentapp.ListFieldsQuery{})
	h.reply(c, http.StatusOK, result, err)
}

type contentBody struct {
	Text string `json:"text"`
}

func (h AdminHandler) PutContent(c *gin.Context) {
	var req contentBody
	if !h.bind(c, &req) {
		return
	}
	result, err := commands.Dispatch[contentapp.UpsertCommand, dto.ContentField](c.Request.Context(), h.Commands,
		contentapp.UpsertCommand{ContentKey: c.Param("key"), Text: req.Text})
	h.reply(c, http.StatusOK, result, err)
}

func (h AdminHandler) bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		respondWithError(c, h.Logger, badRequest("invalid request body"))
		return false
	}
	return true
}

func (h AdminHandler) reply(c *gin.Context, status int, body any, err error) {
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(status, body)
}

// listWindow reads optional from/to filters; without both the whole catalog is listed.
func listWindow(c *gin.Context) (daterange.DateRange, error) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" && to == "" {
		return daterange.DateRange{}, nil
	}
	if from == "" || to == "" {
		return daterange.DateRange{}, badRequest("from and to must be given together")
	}
	return daterange.Parse(from, to)
}

func bodyRange(start, end string) (startDay, endDay time.Time, err error) {
	if startDay, err = requiredDay("start_date", start); err != nil {
		return
	}
	endDay, err = requiredDay("end_date", end)
	return
}

var _ AdminHTTP = AdminHandler{}
