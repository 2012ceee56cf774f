// Package bus is the request/reply messaging fabric between services. The
// broker itself is fire-and-forget; correlation of replies to outstanding
// calls happens here, in memory, with one pending resolver per in-flight
// call. Reply topics are fixed (`<topic>.reply`) and subscribed once at
// startup rather than per call.
package bus

// Header keys carried on every record. Correlation and reply routing live in
// headers so payloads stay opaque to the transport.
const (
	HeaderCorrelationID = "correlation-id"
	HeaderReplyTopic    = "reply-topic"
	HeaderErrorCode     = "error-code"
	HeaderErrorMessage  = "error-message"
)

// Message is one record on a topic. Headers are optional.
type Message struct {
	Topic   string
	Value   []byte
	Headers map[string]string
}

// Header returns the named header or "".
func (m *Message) Header(key string) string {
	if m.Headers == nil {
		return ""
	}
	return m.Headers[key]
}

// ReplyTopic derives the reply twin for a request topic.
func ReplyTopic(topic string) string {
	return topic + ".reply"
}
