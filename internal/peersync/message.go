package peersync

import (
	"encoding/json"

	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
)

// Message kinds relayed over the peer channel.
const (
	KindProductUpdate    = "product_update"
	KindUserLocation     = "user_location"
	KindPurchaseComplete = "purchase_complete"
)

// Message is the wire envelope: a kind tag plus an opaque JSON payload.
// Messages are transient; nothing on the wire is ever persisted as-is.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage wraps a payload value into the wire envelope.
func NewMessage(kind string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payload")
	}
	return Message{Type: kind, Payload: raw}, nil
}

// decodeMessage parses an inbound frame. Malformed frames come back as typed
// parse errors; they are counted and logged upstream, never fatal.
func decodeMessage(frame []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return Message{}, pkgerrors.Wrap(pkgerrors.CodeParse, err, "decode frame")
	}
	return msg, nil
}
