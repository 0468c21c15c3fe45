package catalog

import (
	"context"
	"time"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/support"
	"stayquote/internal/app/queries"
	"stayquote/internal/app/uow"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/stayrules"
)

const (
	listStayRulesKey  = "catalog.stay_rules.list"
	addStayRuleKey    = "catalog.stay_rules.add"
	deleteStayRuleKey = "catalog.stay_rules.delete"
)

type ListStayRulesQuery struct {
	admin
	Window daterange.DateRange
}

func (ListStayRulesQuery) Key() string { return listStayRulesKey }

type ListStayRulesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListStayRulesHandler) Handle(ctx context.Context, q ListStayRulesQuery) ([]dto.StayRule, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	rules, err := unit.StayRules().List(execCtx, q.Window)
	if err != nil {
		return nil, err
	}
	return dto.MapStayRules(rules), nil
}

type AddStayRuleCommand struct {
	admin
	change
	Name               string    `validate:"required,max=120"`
	StartDate          time.Time `validate:"required"`
	EndDate            time.Time `validate:"required"`
	Priority           int
	MinNights          int `validate:"gte=0"`
	EnforceExactNights bool
	ExactNights        *int  `validate:"omitempty,gte=1"`
	AllowedCheckIn     []int `validate:"omitempty,max=7,dive,gte=0,lte=6"`
	AllowedCheckOut    []int `validate:"omitempty,max=7,dive,gte=0,lte=6"`
}

func (AddStayRuleCommand) Key() string { return addStayRuleKey }

type AddStayRuleHandler struct {
	UoWFactory uow.UoWFactory
	Publisher  Publisher
	IDs        func() string
	Now        func() time.Time
}

func (h *AddStayRuleHandler) Handle(ctx context.Context, cmd AddStayRuleCommand) (dto.StayRule, error) {
	dr, err := daterange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return dto.StayRule{}, err
	}
	now := clock(h.Now).now()
	rule, err := stayrules.NewRule(stayrules.NewRuleParams{
		ID:                 stayrules.RuleID(ids(h.IDs).next()),
		Name:               cmd.Name,
		Range:              dr,
		Priority:           cmd.Priority,
		MinNights:          cmd.MinNights,
		EnforceExactNights: cmd.EnforceExactNights,
		ExactNights:        cmd.ExactNights,
		AllowedCheckIn:     cmd.AllowedCheckIn,
		AllowedCheckOut:    cmd.AllowedCheckOut,
		Now:                now,
	})
	if err != nil {
		return dto.StayRule{}, err
	}
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		existing, err := unit.StayRules().List(ctx, rule.Range)
		if err != nil {
			return err
		}
		if err := stayrules.EnsureUnambiguous(existing, rule); err != nil {
			return err
		}
		if err := unit.StayRules().Add(ctx, rule); err != nil {
			return err
		}
		return h.Publisher.publish(ctx, stayrules.RuleAddedEvent(rule, now))
	})
	if err != nil {
		return dto.StayRule{}, err
	}
	return dto.MapStayRule(rule), nil
}

type DeleteStayRuleCommand struct {
	admin
	change
	ID string `validate:"required"`
}

func (DeleteStayRuleCommand) Key() string { return deleteStayRuleKey }

type DeleteStayRuleHandler struct {
	UoWFactory uow.UoWFactory
	Publisher  Publisher
	Now        func() time.Time
}

func (h *DeleteStayRuleHandler) Handle(ctx context.Context, cmd DeleteStayRuleCommand) (dto.StayRule, error) {
	var removed stayrules.Rule
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		var err error
		removed, err = unit.StayRules().Delete(ctx, stayrules.RuleID(cmd.ID))
		if err != nil {
			return err
		}
		return h.Publisher.publish(ctx, stayrules.RuleRemovedEvent(removed, clock(h.Now).now()))
	})
	if err != nil {
		return dto.StayRule{}, err
	}
	return dto.MapStayRule(removed), nil
}

var (
	_ queries.Handler[ListStayRulesQuery, []dto.StayRule]   = (*ListStayRulesHandler)(nil)
	_ commands.Handler[AddStayRuleCommand, dto.StayRule]    = (*AddStayRuleHandler)(nil)
	_ commands.Handler[DeleteStayRuleCommand, dto.StayRule] = (*DeleteStayRuleHandler)(nil)
)
