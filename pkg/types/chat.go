package types

// EnvelopeType tags a reply sent to a WebSocket client.
type EnvelopeType string

const (
	EnvelopeAIResponse EnvelopeType = "ai_response"
	EnvelopeError      EnvelopeType = "error"
)

// Envelope is the single JSON frame written back for every inbound message.
type Envelope struct {
	Type    EnvelopeType `json:"type"`
	Content string       `json:"content"`
}

func AIResponse(content string) Envelope {
	return Envelope{Type: EnvelopeAIResponse, Content: content}
}

func ErrorEnvelope(content string) Envelope {
	return Envelope{Type: EnvelopeError, Content: content}
}
