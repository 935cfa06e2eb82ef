package realtime

import (
	"encoding/json"
	"fmt"
)

// Event names carried in the envelope.
const (
	EventChatHistory    = "chat_history"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventError          = "error"
)

// Envelope is the JSON frame exchanged over the websocket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrorPayload is the data of an EventError frame.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Encode marshals data into an envelope frame for event.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", event, err)
	}
	return frame, nil
}

func errorFrame(msg string) []byte {
	// ErrorPayload always marshals.
	frame, _ := Encode(EventError, ErrorPayload{Message: msg})
	return frame
}
