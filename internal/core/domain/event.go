package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClientEvent is the closed set of actions a connected client can send.
// The wire form is an externally tagged JSON object with exactly one
// variant key: {"Join":{...}} or {"SendMessage":"..."}.
type ClientEvent interface {
	clientEvent()
}

// JoinRequest announces the client to its room.
type JoinRequest struct {
	JoinAt time.Time `json:"join_at"`
}

func (JoinRequest) clientEvent() {}

// SendMessage carries validated message content for room broadcast.
type SendMessage struct {
	Content MessageContent
}

func (SendMessage) clientEvent() {}

// DecodeClientEvent parses one inbound frame. Content validation happens
// here, before the event reaches any dispatch logic.
func DecodeClientEvent(data []byte) (ClientEvent, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("malformed client event: %w", err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("client event must carry exactly one variant, got %d", len(tagged))
	}

	for tag, raw := range tagged {
		switch tag {
		case "Join":
			var req JoinRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return nil, fmt.Errorf("malformed Join payload: %w", err)
			}
			if req.JoinAt.IsZero() {
				return nil, fmt.Errorf("Join payload is missing join_at")
			}
			return req, nil
		case "SendMessage":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, fmt.Errorf("malformed SendMessage payload: %w", err)
			}
			content, err := ParseMessageContent(s)
			if err != nil {
				return nil, err
			}
			return SendMessage{Content: content}, nil
		default:
			return nil, fmt.Errorf("unknown client event variant %q", tag)
		}
	}
	return nil, fmt.Errorf("empty client event")
}

// ServerEvent is the closed set of events fanned out to connections.
type ServerEvent interface {
	serverEvent()
}

// ErrMessage reports a per-request failure to a single connection.
type ErrMessage struct {
	Message string `json:"message"`
}

func (ErrMessage) serverEvent() {}

// JoinResponse acknowledges a join to the joining connection only.
type JoinResponse struct {
	UserID UserID `json:"user_id"`
}

func (JoinResponse) serverEvent() {}

// UserJoinResponse announces a join to the whole room, joiner included.
type UserJoinResponse struct {
	UserID UserID `json:"user_id"`
}

func (UserJoinResponse) serverEvent() {}

// ReceivedMessage delivers a chat message to the whole room.
type ReceivedMessage Message

func (ReceivedMessage) serverEvent() {}

// EncodeServerEvent serializes an event into its externally tagged wire form.
// The switch is exhaustive over the closed set; an unknown type is a
// programming error surfaced as an error rather than a silent frame.
func EncodeServerEvent(ev ServerEvent) ([]byte, error) {
	var tag string
	switch ev.(type) {
	case ErrMessage:
		tag = "ErrMessage"
	case JoinResponse:
		tag = "Join"
	case UserJoinResponse:
		tag = "UserJoin"
	case ReceivedMessage:
		tag = "ReceivedMessage"
	default:
		return nil, fmt.Errorf("unhandled server event type %T", ev)
	}
	return json.Marshal(map[string]ServerEvent{tag: ev})
}

// DecodeServerEvent parses a server frame back into its variant. Used by
// clients and tests.
func DecodeServerEvent(data []byte) (ServerEvent, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("malformed server event: %w", err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("server event must carry exactly one variant, got %d", len(tagged))
	}

	for tag, raw := range tagged {
		switch tag {
		case "ErrMessage":
			var ev ErrMessage
			if err := json.Unmarshal(raw, &ev); err != nil {
				return nil, err
			}
			return ev, nil
		case "Join":
			var ev JoinResponse
			if err := json.Unmarshal(raw, &ev); err != nil {
				return nil, err
			}
			return ev, nil
		case "UserJoin":
			var ev UserJoinResponse
			if err := json.Unmarshal(raw, &ev); err != nil {
				return nil, err
			}
			return ev, nil
		case "ReceivedMessage":
			var ev ReceivedMessage
			if err := json.Unmarshal(raw, &ev); err != nil {
				return nil, err
			}
			return ev, nil
		default:
			return nil, fmt.Errorf("unknown server event variant %q", tag)
		}
	}
	return nil, fmt.Errorf("empty server event")
}
