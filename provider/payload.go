package provider

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
)

// Payload is the body of a token endpoint response. It is either a
// StructuredPayload or a RawPayload; both serialize back to JSON.
type Payload interface {
	json.Marshaler
	isPayload()
}

// StructuredPayload is a response body that parsed as JSON. Body holds the
// provider's bytes unchanged apart from surrounding whitespace.
type StructuredPayload struct {
	Body json.RawMessage
}

func (StructuredPayload) isPayload() {}

func (p StructuredPayload) MarshalJSON() ([]byte, error) {
	return p.Body, nil
}

// RawPayload is a response body that was not JSON. It serializes as {"raw": text}.
type RawPayload struct {
	Text string
}

func (RawPayload) isPayload() {}

func (p RawPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"raw": p.Text})
}

// ParsePayload classifies body by its declared content type. A JSON content
// type is decoded structurally; any other type is tried as JSON text first.
// Whatever does not parse becomes a RawPayload, so parsing never fails.
func ParsePayload(contentType string, body []byte) Payload {
	trimmed := bytes.TrimSpace(body)
	valid := json.Valid(trimmed)

	switch {
	case valid:
		return StructuredPayload{Body: json.RawMessage(trimmed)}
	case isJSONContentType(contentType):
		log.Warn().Str("content_type", contentType).Int("bytes", len(body)).Msg("Provider declared JSON but the body did not parse")
	}
	return RawPayload{Text: string(body)}
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}
