// Package booking records booking-interest signals. Records are appended
// to a newline-delimited JSON log and never read back by the request path;
// the bridge consumer picks them up from there.
package booking

import (
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/oklog/ulid/v2"
)

const (
	// Kind marks every record written by this package.
	Kind = "booking_interest"
	// Source identifies the public conversational layer as the writer.
	Source = "oram_public"

	maxContextChars = 280
)

// Record is one booking-interest event.
type Record struct {
	ID        string    `json:"id" jsonschema:"required,description=ULID of the record"`
	Timestamp time.Time `json:"ts" jsonschema:"required"`
	Kind      string    `json:"kind" jsonschema:"required,enum=booking_interest"`
	Source    string    `json:"source" jsonschema:"required"`
	Event     string    `json:"event" jsonschema:"required,description=intent that fired the signal"`
	Context   string    `json:"context" jsonschema:"required"`
	Artist    string    `json:"artist" jsonschema:"required"`
	Date      string    `json:"date" jsonschema:"required"`
}

// Show is the venue night a record refers to.
type Show struct {
	Artist string
	Date   string
}

// NewRecord builds an immutable record stamped with now.
func NewRecord(event, context string, show Show, now time.Time) Record {
	return Record{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Timestamp: now.UTC(),
		Kind:      Kind,
		Source:    Source,
		Event:     event,
		Context:   clip(context, maxContextChars),
		Artist:    show.Artist,
		Date:      show.Date,
	}
}

// Marshal returns the single-line JSON form of r.
func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Parse decodes one log line.
func Parse(line []byte) (Record, error) {
	var r Record
	err := json.Unmarshal(line, &r)
	return r, err
}

// Schema returns the JSON schema of Record.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	return reflector.Reflect(&Record{})
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
