package llm

import "github.com/kiru56776/AI-math/misc"

// Purpose selects which model family a relay targets.
type Purpose int

const (
	PurposeChat Purpose = iota
	PurposeTextGeneration
	PurposeImageGeneration
)

func (p Purpose) String() string {
	switch p {
	case PurposeTextGeneration:
		return "text_generation"
	case PurposeImageGeneration:
		return "image_generation"
	}
	return "chat"
}

// BuildRequest merges prior turns, the new user content and the fixed system
// directive into one upstream payload. If any new part carries inline media
// the request routes to the vision endpoint variant; pure-text turns use the
// text endpoint. The directive stays outside the turn sequence so it is never
// echoed back as a prior model turn and never counts toward history length.
func BuildRequest(history []Turn, parts []Part, directive string, tools bool, purpose Purpose) Request {
	multimodal := false
	for _, p := range parts {
		if p.InlineData != nil {
			multimodal = true
			break
		}
	}

	contents := make([]Turn, 0, len(history)+1)
	contents = append(contents, history...)
	contents = append(contents, UserTurn(parts...))

	return Request{
		Contents:          contents,
		SystemInstruction: directive,
		Tools:             tools,
		Multimodal:        multimodal,
		Model:             resolveModel(purpose, multimodal),
	}
}

// resolveModel maps the relay purpose and endpoint variant to a model name.
func resolveModel(purpose Purpose, multimodal bool) string {
	if purpose == PurposeImageGeneration {
		return misc.GetImageModel()
	}
	if multimodal {
		return misc.GetVisionModel()
	}
	return misc.GetTextModel()
}
