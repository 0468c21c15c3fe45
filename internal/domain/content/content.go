package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrUnknownKey    = errors.New("content: unknown content key")
	ErrTextRequired  = errors.New("content: text is required")
	ErrTextTooLong   = errors.New("content: text is too long")
	ErrSingleLine    = errors.New("content: text must be a single line")
	ErrBlockNotFound = errors.New("content: block not found")
)

// Kind selects the editor and the rules a block's text follows.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
)

func (k Kind) maxLength() int {
	if k == KindTextarea {
		return 5000
	}
	return 300
}

const (
	HomeQuoteKey = "home_quote_text"
	WelcomeKey   = "welcome_text"
)

// Field is a key the admin may edit, with where it appears on the site.
type Field struct {
	Key     string
	Label   string
	Section string
	Kind    Kind
	// Default is served while nothing is stored for Key.
	Default string
}

var managed = []Field{
	{Key: HomeQuoteKey, Label: "Home Page Quote", Section: "Home", Kind: KindText, Default: "A masterpiece of light and space."},
	{Key: WelcomeKey, Label: "Welcome/Intro Story", Section: "Home", Kind: KindTextarea},
}

// Managed lists the editable keys in display order.
func Managed() []Field {
	return append([]Field(nil), managed...)
}

func Lookup(key string) (Field, bool) {
	for _, f := range managed {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Block is the stored text of one managed key.
type Block struct {
	Key       string
	Kind      Kind
	Text      string
	UpdatedAt time.Time
}

// NewBlock normalizes text for key and checks it against the key's kind.
func NewBlock(key, text string, now time.Time) (Block, error) {
	field, ok := Lookup(strings.TrimSpace(key))
	if !ok {
		return Block{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return Block{}, ErrTextRequired
	}
	if field.Kind == KindText && strings.ContainsAny(text, "\r\n") {
		return Block{}, ErrSingleLine
	}
	if limit := field.Kind.maxLength(); utf8.RuneCountInString(text) > limit {
		return Block{}, fmt.Errorf("%w: %s allows %d characters", ErrTextTooLong, field.Key, limit)
	}
	return Block{Key: field.Key, Kind: field.Kind, Text: text, UpdatedAt: now.UTC()}, nil
}

// Resolved pairs a managed field with its current text.
type Resolved struct {
	Field
	Text      string
	UpdatedAt time.Time
	Stored    bool
}

// Resolve returns every managed field in order, using stored text where present
// and the field default otherwise. Stored blocks for unmanaged keys are ignored.
func Resolve(stored []Block) []Resolved {
	byKey := make(map[string]Block, len(stored))
	for _, b := range stored {
		byKey[b.Key] = b
	}
	out := make([]Resolved, 0, len(managed))
	for _, f := range managed {
		r := Resolved{Field: f, Text: f.Default}
		if b, ok := byKey[f.Key]; ok {
			r.Text, r.UpdatedAt, r.Stored = b.Text, b.UpdatedAt, true
		}
		out = append(out, r)
	}
	return out
}

type Repository interface {
	Get(ctx context.Context, key string) (Block, error)
	List(ctx context.Context) ([]Block, error)
	// Save inserts or replaces the block stored under b.Key.
	Save(ctx context.Context, b Block) error
}
