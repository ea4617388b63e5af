package entity

// TextMessage is the only outbound message segment this backend sends.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextMessage builds a text message segment.
func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: MessageTypeText, Text: text}
}

// LineReplyRequest is the body of POST /v2/bot/message/reply.
type LineReplyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []TextMessage `json:"messages"`
}

// LinePushRequest is the body of POST /v2/bot/message/push.
type LinePushRequest struct {
	To       string        `json:"to"`
	Messages []TextMessage `json:"messages"`
}

// LineProfile is the response of GET /v2/bot/profile/{userId}.
type LineProfile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

// LineQuota is the response of GET /v2/bot/message/quota/consumption.
type LineQuota struct {
	TotalUsage int64 `json:"totalUsage"`
}
