package content

import (
	"context"
	"time"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/support"
	"stayquote/internal/app/outbox"
	"stayquote/internal/app/queries"
	"stayquote/internal/app/uow"
	domaincontent "stayquote/internal/domain/content"
	"stayquote/internal/domain/shared/events"
)

const (
	siteContentKey   = "content.site"
	listFieldsKey    = "content.fields.list"
	upsertContentKey = "content.upsert"
)

// SiteContentQuery is the public read of every managed key.
type SiteContentQuery struct{}

func (SiteContentQuery) Key() string { return siteContentKey }

type SiteContentHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SiteContentHandler) Handle(ctx context.Context, _ SiteContentQuery) (dto.SiteContent, error) {
	resolved, err := resolve(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	return dto.MapSiteContent(resolved), nil
}

// ListFieldsQuery feeds the admin editor: labels, sections and whether a key was customized.
type ListFieldsQuery struct{}

func (ListFieldsQuery) Key() string { return listFieldsKey }

func (ListFieldsQuery) AdminOnly() {}

type ListFieldsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListFieldsHandler) Handle(ctx context.Context, _ ListFieldsQuery) ([]dto.ContentField, error) {
	resolved, err := resolve(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	return dto.MapContentFields(resolved), nil
}

func resolve(ctx context.Context, factory uow.UoWFactory) ([]domaincontent.Resolved, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, factory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	stored, err := unit.Content().List(execCtx)
	if err != nil {
		return nil, err
	}
	return domaincontent.Resolve(stored), nil
}

// UpsertCommand replaces the text stored under ContentKey.
type UpsertCommand struct {
	ContentKey string `json:"key" validate:"required"`
	Text       string `validate:"required"`
}

func (UpsertCommand) Key() string { return upsertContentKey }

func (UpsertCommand) AdminOnly() {}

// Check applies the key's kind rules before a unit is opened.
func (c UpsertCommand) Check() error {
	_, err := domaincontent.NewBlock(c.ContentKey, c.Text, time.Time{})
	return err
}

type UpsertHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UpsertHandler) Handle(ctx context.Context, cmd UpsertCommand) (dto.ContentField, error) {
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	block, err := domaincontent.NewBlock(cmd.ContentKey, cmd.Text, now)
	if err != nil {
		return dto.ContentField{}, err
	}
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.Content().Save(ctx, block); err != nil {
			return err
		}
		return outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{domaincontent.UpdatedEvent(block)})
	})
	if err != nil {
		return dto.ContentField{}, err
	}
	field, _ := domaincontent.Lookup(block.Key)
	return dto.MapContentField(domaincontent.Resolved{Field: field, Text: block.Text, UpdatedAt: block.UpdatedAt, Stored: true}), nil
}

var (
	_ queries.Handler[SiteContentQuery, dto.SiteContent]   = (*SiteContentHandler)(nil)
	_ queries.Handler[ListFieldsQuery, []dto.ContentField] = (*ListFieldsHandler)(nil)
	_ commands.Handler[UpsertCommand, dto.ContentField]    = (*UpsertHandler)(nil)
)
