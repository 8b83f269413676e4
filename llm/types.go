package llm

// Role constants — Gemini dialect.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// InlineData carries one base64-encoded media blob inside a content part.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part is one content fragment of a turn: either text or inline media.
// The same shape is used on the wire and in the history store.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// TextPart builds a text-only content part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// MediaPart builds an inline-media content part from raw bytes.
// Data is base64-encoded here so callers never handle encoding themselves.
func MediaPart(mimeType string, data []byte) Part {
	return Part{InlineData: &InlineData{MimeType: mimeType, Data: encodeBase64(data)}}
}

// Citation is one grounding attribution attached to an answer.
type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Response is the extracted result of a successful upstream call.
// Text already includes the trailing Sources block when citations exist.
type Response struct {
	Text      string
	Citations []Citation
}

// Request is one fully assembled upstream payload plus its routing decision.
// The system directive is a separate field and is never part of Contents,
// so it is never replayed as a prior model turn.
type Request struct {
	Contents          []Turn
	SystemInstruction string
	Tools             bool
	Multimodal        bool   // true routes to the vision endpoint variant
	Model             string // resolved model name for the endpoint
}
