package entity

// LINE webhook event types we care about. The platform defines more
// (follow, unfollow, join, beacon, ...); anything that is not a text
// message is acknowledged and skipped.
const (
	EventTypeMessage  = "message"
	EventTypePostback = "postback"

	MessageTypeText     = "text"
	MessageTypeSticker  = "sticker"
	MessageTypeLocation = "location"
)

// WebhookEnvelope is the decoded body of one webhook delivery.
// A single delivery may batch several events.
type WebhookEnvelope struct {
	Destination string  `json:"destination,omitempty"`
	Events      []Event `json:"events"`
}

// Event is one unit of user activity inside an envelope.
type Event struct {
	Type       string       `json:"type"`
	ReplyToken string       `json:"replyToken,omitempty"`
	Timestamp  int64        `json:"timestamp,omitempty"`
	Source     EventSource  `json:"source"`
	Message    EventMessage `json:"message,omitempty"`
	Postback   Postback     `json:"postback,omitempty"`
}

// EventSource identifies where the event originated.
type EventSource struct {
	Type    string `json:"type,omitempty"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

// EventMessage is the message part of a "message" event.
type EventMessage struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
	// Location messages
	Title     string  `json:"title,omitempty"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// Postback carries the data payload of a "postback" event.
type Postback struct {
	Data string `json:"data,omitempty"`
}

// IsTextMessage reports whether the event is a plain text message
// that the chat dispatcher should answer.
func (e *Event) IsTextMessage() bool {
	return e.Type == EventTypeMessage && e.Message.Type == MessageTypeText
}
