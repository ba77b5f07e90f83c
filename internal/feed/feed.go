// Package feed is a small message feed used by the tagdecode command: text, image and
// link messages sharing a common header, discriminated by a type field.
package feed

import (
	"time"

	"github.com/go-gum/tagged"
	"github.com/google/uuid"
)

// DefaultField is the discriminator field used when none is configured.
const DefaultField = "type"

const (
	TypeText  = "text"
	TypeImage = "image"
	TypeLink  = "link"
)

// Message is implemented by all message variants.
type Message interface {
	// Base returns the fields shared by all messages.
	Base() Header
}

// Header holds the fields shared by all messages.
type Header struct {
	ID     int64      `json:"id" validate:"required"`
	SentAt *time.Time `json:"sent_at,omitempty"`
	Author string     `json:"author,omitempty"`
}

func (h Header) Base() Header {
	return h
}

type Text struct {
	Header
	Body string `json:"body,required"`
}

type Image struct {
	Header
	URL     string    `json:"url,required" validate:"url"`
	AssetID uuid.UUID `json:"asset_id"`
	Width   int       `json:"width,omitempty" validate:"gte=0"`
	Height  int       `json:"height,omitempty" validate:"gte=0"`
}

type Link struct {
	Header
	Href  string   `json:"href,required" validate:"http_url"`
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty" validate:"dive,required"`
}

// NewRegistry returns the registry of all message variants, discriminated by field.
func NewRegistry(field string) (*tagged.Registry[Message], error) {
	if field == "" {
		field = DefaultField
	}

	return tagged.NewRegistry(field,
		tagged.Case[Message, Text](TypeText),
		tagged.Case[Message, Image](TypeImage),
		tagged.Case[Message, Link](TypeLink),
	)
}

// Registry is the message registry using DefaultField.
var Registry = tagged.MustRegistry(DefaultField,
	tagged.Case[Message, Text](TypeText),
	tagged.Case[Message, Image](TypeImage),
	tagged.Case[Message, Link](TypeLink),
)
