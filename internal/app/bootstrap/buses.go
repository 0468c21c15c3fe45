// Package bootstrap registers every command and query handler and wraps the buses
// with the middleware pipeline shared by the HTTP server and its tests.
package bootstrap

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"stayquote/internal/app/commands"
	availabilityapp "stayquote/internal/app/handlers/availability"
	catalogapp "stayquote/internal/app/handlers/catalog"
	contentapp "stayquote/internal/app/handlers/content"
	inquiryapp "stayquote/internal/app/handlers/inquiries"
	"stayquote/internal/app/middleware"
	"stayquote/internal/app/outbox"
	"stayquote/internal/app/policies"
	"stayquote/internal/app/queries"
	"stayquote/internal/app/services/auth"
	"stayquote/internal/app/uow"
)

type Deps struct {
	UoW          uow.UoWFactory
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Idempotency  middleware.IdempotencyStore
	Cache        policies.AvailabilityCache
	Validator    middleware.Validator
	Clock        policies.Clock
	IDs          func() string
	WindowMonths int
	Logger       *slog.Logger
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// Build registers the handlers and returns the decorated buses. Command middleware runs
// outermost first: tracing, authorization, validation, idempotency, cache invalidation,
// outbox flush, transaction.
func Build(d Deps) Buses {
	clock := d.Clock
	if clock == nil {
		clock = policies.SystemClock{}
	}
	now := func() time.Time { return clock.Now() }
	encoder := d.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	publisher := catalogapp.Publisher{Outbox: d.Outbox, Encoder: encoder}

	cmdBus := commands.NewInMemoryBus()
	commands.RegisterHandler(cmdBus, catalogapp.AddBlockedRangeCommand{}.Key(),
		&catalogapp.AddBlockedRangeHandler{UoWFactory: d.UoW, Publisher: publisher, IDs: d.IDs, Now: now})
	commands.RegisterHandler(cmdBus, catalogapp.DeleteBlockedRangeCommand{}.Key(),
		&catalogapp.DeleteBlockedRangeHandler{UoWFactory: d.UoW, Publisher: publisher, Now: now})
	commands.RegisterHandler(cmdBus, catalogapp.AddStayRuleCommand{}.Key(),
		&catalogapp.AddStayRuleHandler{UoWFactory: d.UoW, Publisher: publisher, IDs: d.IDs, Now: now})
	commands.RegisterHandler(cmdBus, catalogapp.DeleteStayRuleCommand{}.Key(),
		&catalogapp.DeleteStayRuleHandler{UoWFactory: d.UoW, Publisher: publisher, Now: now})
	commands.RegisterHandler(cmdBus, catalogapp.AddSeasonCommand{}.Key(),
		&catalogapp.AddSeasonHandler{UoWFactory: d.UoW, Publisher: publisher, IDs: d.IDs, Now: now})
	commands.RegisterHandler(cmdBus, catalogapp.DeleteSeasonCommand{}.Key(),
		&catalogapp.DeleteSeasonHandler{UoWFactory: d.UoW, Publisher: publisher, Now: now})
	commands.RegisterHandler(cmdBus, inquiryapp.SubmitInquiryCommand{}.Key(),
		&inquiryapp.SubmitInquiryHandler{UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: encoder, IDs: d.IDs, Now: now, Logger: d.Logger})
	commands.RegisterHandler(cmdBus, inquiryapp.UpdateStatusCommand{}.Key(),
		&inquiryapp.UpdateStatusHandler{UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: encoder, Now: now})
	commands.RegisterHandler(cmdBus, contentapp.UpsertCommand{}.Key(),
		&contentapp.UpsertHandler{UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: encoder, Now: now})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetAvailabilityQuery{}.Key(),
		&availabilityapp.GetAvailabilityHandler{UoWFactory: d.UoW, Cache: d.Cache, Clock: clock, WindowMonths: d.WindowMonths, Logger: d.Logger})
	queries.RegisterHandler(queryBus, availabilityapp.CheckStayQuery{}.Key(),
		&availabilityapp.CheckStayHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, catalogapp.ListBlockedRangesQuery{}.Key(),
		&catalogapp.ListBlockedRangesHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, catalogapp.ListStayRulesQuery{}.Key(),
		&catalogapp.ListStayRulesHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, catalogapp.ListSeasonsQuery{}.Key(),
		&catalogapp.ListSeasonsHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, inquiryapp.ListInquiriesQuery{}.Key(),
		&inquiryapp.ListInquiriesHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, contentapp.SiteContentQuery{}.Key(),
		&contentapp.SiteContentHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, contentapp.ListFieldsQuery{}.Key(),
		&contentapp.ListFieldsHandler{UoWFactory: d.UoW})

	tracer := otel.Tracer("stayquote")
	policy := auth.AdminPolicy{}

	var idempotency middleware.CommandMiddleware
	if d.Idempotency != nil {
		idempotency = middleware.Idempotency(d.Idempotency, nil)
	}
	var invalidate middleware.CommandMiddleware
	if d.Cache != nil {
		invalidate = middleware.InvalidateOnCatalogChange(d.Cache, d.Logger)
	}
	var validation middleware.CommandMiddleware
	var queryValidation middleware.QueryMiddleware
	if d.Validator != nil {
		validation = middleware.Validation(d.Validator)
		queryValidation = middleware.QueryValidation(d.Validator)
	}

	return Buses{
		Commands: middleware.ChainCommands(
			cmdBus,
			middleware.Tracing(tracer),
			middleware.Authorization(policy),
			validation,
			idempotency,
			invalidate,
			middleware.OutboxFlush(d.Outbox, d.Logger),
			middleware.Transaction(d.UoW, nil),
		),
		Queries: middleware.ChainQueries(
			queryBus,
			middleware.QueryTracing(tracer),
			middleware.QueryAuthorization(policy),
			queryValidation,
		),
	}
}
