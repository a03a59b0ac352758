package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "aeis",
		Category:    "column",
		Version:     "v1",
		Description: "Decoded AEIS column with its fact triples",
		Factory:     func() any { return &ColumnPayload{} },
	})
	if err != nil {
		panic("failed to register ColumnPayload: " + err.Error())
	}
}

// ColumnType is the message type for decoded column payloads.
var ColumnType = message.Type{Domain: "aeis", Category: "column", Version: "v1"}

// ColumnPayload implements message.Payload and graph.Graphable for decoded columns.
type ColumnPayload struct {
	EntityID_  string           `json:"id"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (p *ColumnPayload) EntityID() string          { return p.EntityID_ }
func (p *ColumnPayload) Triples() []message.Triple { return p.TripleData }
func (p *ColumnPayload) Schema() message.Type      { return ColumnType }

func (p *ColumnPayload) Validate() error {
	if p.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	if len(p.TripleData) == 0 {
		return errors.New("at least one triple is required")
	}
	return nil
}

func (p *ColumnPayload) MarshalJSON() ([]byte, error) {
	type Alias ColumnPayload
	return json.Marshal((*Alias)(p))
}

func (p *ColumnPayload) UnmarshalJSON(data []byte) error {
	type Alias ColumnPayload
	return json.Unmarshal(data, (*Alias)(p))
}
