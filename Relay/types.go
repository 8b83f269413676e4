package Relay

// EventKind distinguishes inbound message content.
type EventKind int

const (
	KindText EventKind = iota
	KindImage
)

// Event is one inbound message from the chat transport.
type Event struct {
	Owner     string    // stable user identity, sole key into history and session state
	Chat      int64     // chat the reply goes to
	MessageID int       // inbound message id, replied to
	Kind      EventKind
	Text      string    // message text or media caption
	MediaRef  string    // opaque transport file handle, set for KindImage
}

// MessageRef identifies one outbound message so it can be edited later.
type MessageRef struct {
	Chat      int64
	MessageID int
}

// Messenger is the callback surface into the chat transport. Send and edit
// failures are transport failures: logged by the caller, never retried,
// never affecting history already committed.
type Messenger interface {
	Reply(chat int64, replyTo int, text string) (MessageRef, error)
	Edit(ref MessageRef, text string) error
	FetchMedia(mediaRef string) (mimeType string, data []byte, err error)
}

// WebMsg is one relay lifecycle event pushed to connected websocket clients.
type WebMsg struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data"`
	Owner string      `json:"owner"`
}
