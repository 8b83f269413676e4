package Relay

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/kiru56776/AI-math/history"
	"github.com/kiru56776/AI-math/llm"
	"github.com/kiru56776/AI-math/misc"
)

// EngineConfig carries the engine's collaborators. Everything is injected;
// there are no ambient singletons.
type EngineConfig struct {
	History   *history.Adapter
	Client    llm.Client
	Messenger Messenger
	MsgChan   chan WebMsg // optional lifecycle event stream, may be nil
}

// Engine drives one full relay per inbound event: resolve command or mode,
// emit the thinking placeholder, load and trim history, call upstream, persist
// the exchange and finalize the placeholder with the answer.
type Engine struct {
	history   *history.Adapter
	client    llm.Client
	messenger Messenger
	sessions  *SessionTable
	msgChan   chan WebMsg
}

func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		history:   cfg.History,
		client:    cfg.Client,
		messenger: cfg.Messenger,
		sessions:  NewSessionTable(),
		msgChan:   cfg.MsgChan,
	}
}

// Sessions exposes the per-owner state table.
func (e *Engine) Sessions() *SessionTable {
	return e.sessions
}

// HandleEvent processes one inbound event to completion. Each event is an
// independent unit of work: the engine imposes no ordering across owners and
// no serialization of one owner's concurrent events.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) {
	relayID := uuid.NewString()

	if ev.Kind == KindText {
		switch resolveCommand(ev.Text) {
		case cmdStart:
			e.replyStatic(ev, welcomeText)
			return
		case cmdWho:
			e.replyStatic(ev, creatorText)
			return
		case cmdText:
			e.sessions.Await(ev.Owner, llm.PurposeTextGeneration)
			e.emit("mode_selected", ev.Owner, llm.PurposeTextGeneration.String())
			e.replyStatic(ev, textModeAckText)
			return
		case cmdImage:
			e.sessions.Await(ev.Owner, llm.PurposeImageGeneration)
			e.emit("mode_selected", ev.Owner, llm.PurposeImageGeneration.String())
			e.replyStatic(ev, imageModeAckText)
			return
		}
	}

	purpose := llm.PurposeChat
	if ev.Kind == KindText {
		// Only a text event consumes a pending prompt request; an image event
		// leaves the mode in place for the owner's next text event.
		if p, awaiting := e.sessions.Consume(ev.Owner); awaiting {
			purpose = p
		}
	}
	e.relay(ctx, relayID, ev, purpose)
}

func (e *Engine) relay(ctx context.Context, relayID string, ev Event, purpose llm.Purpose) {
	parts, ok := e.buildParts(ev)
	if !ok {
		e.replyStatic(ev, genericApologyText)
		return
	}

	// Best-effort placeholder: a failed send is logged and the final answer
	// falls back to a fresh reply.
	placeholder, perr := e.messenger.Reply(ev.Chat, ev.MessageID, thinkingText)
	if perr != nil {
		misc.Warn("relay", fmt.Sprintf("[%s] placeholder send failed: %v", relayID, perr), nil)
	}

	hist := llm.TrimTurns(e.history.Load(ev.Owner), misc.GetMaxContext())
	tools := purpose == llm.PurposeChat && misc.GetGroundingEnabled()
	req := llm.BuildRequest(hist, parts, systemDirective, tools, purpose)
	e.emit("relay_started", ev.Owner, map[string]interface{}{
		"relay_id": relayID,
		"purpose":  purpose.String(),
		"model":    req.Model,
		"turns":    len(req.Contents),
	})

	resp, err := e.client.Generate(ctx, req)
	if err != nil {
		kind := llm.KindOf(err)
		misc.Warn("relay", fmt.Sprintf("[%s] upstream terminal failure (%s): %v", relayID, kind, err), nil)
		e.emit("relay_failed", ev.Owner, map[string]interface{}{"relay_id": relayID, "kind": kind.String()})
		// History stays untouched: the user's turn is not recorded as answered.
		e.finalize(ev, placeholder, perr == nil, failureText(kind))
		return
	}

	e.history.Append(ev.Owner, llm.UserTurn(parts...), llm.ModelTurn(resp.Text))
	e.emit("relay_completed", ev.Owner, map[string]interface{}{
		"relay_id":  relayID,
		"citations": len(resp.Citations),
	})
	e.finalize(ev, placeholder, perr == nil, resp.Text)
}

// buildParts assembles the new user content, fetching media bytes through the
// transport when the event carries a media handle. Over-long text is cut to
// MessageMaximum with a visible truncation notice.
func (e *Engine) buildParts(ev Event) ([]llm.Part, bool) {
	text := ev.Text
	if max := misc.GetMessageMaximum(); len(text) > max {
		text = text[:max] + " ...... (The text exceeds the maximum length of " +
			strconv.Itoa(max) + " characters and was truncated.)"
	}

	if ev.Kind == KindImage && ev.MediaRef != "" {
		mimeType, data, err := e.messenger.FetchMedia(ev.MediaRef)
		if err != nil {
			misc.Warn("relay", fmt.Sprintf("media fetch failed for %s: %v", ev.Owner, err), nil)
			return nil, false
		}
		parts := []llm.Part{llm.MediaPart(mimeType, data)}
		if text != "" {
			parts = append(parts, llm.TextPart(text))
		}
		return parts, true
	}

	if text == "" {
		return nil, false
	}
	return []llm.Part{llm.TextPart(text)}, true
}

// finalize replaces the placeholder with the final text, falling back to a
// fresh reply when the placeholder never landed or the edit fails.
func (e *Engine) finalize(ev Event, placeholder MessageRef, havePlaceholder bool, text string) {
	if havePlaceholder {
		err := e.messenger.Edit(placeholder, text)
		if err == nil {
			return
		}
		misc.Warn("relay", fmt.Sprintf("placeholder edit failed for %s: %v", ev.Owner, err), nil)
	}
	if _, err := e.messenger.Reply(ev.Chat, ev.MessageID, text); err != nil {
		misc.Warn("relay", fmt.Sprintf("final reply failed for %s: %v", ev.Owner, err), nil)
	}
}

func (e *Engine) replyStatic(ev Event, text string) {
	if _, err := e.messenger.Reply(ev.Chat, ev.MessageID, text); err != nil {
		misc.Warn("relay", fmt.Sprintf("reply failed for %s: %v", ev.Owner, err), nil)
	}
}

// failureText maps a terminal failure kind to its fixed user-facing message.
func failureText(kind llm.FailureKind) string {
	switch kind {
	case llm.FailureRateLimited:
		return rateLimitedText
	case llm.FailureEmptyResult:
		return emptyResultText
	default:
		return genericApologyText
	}
}

// emit pushes a lifecycle event without ever blocking a relay on a slow or
// absent consumer.
func (e *Engine) emit(eventType, owner string, data interface{}) {
	if e.msgChan == nil {
		return
	}
	select {
	case e.msgChan <- WebMsg{Type: eventType, Data: data, Owner: owner}:
	default:
	}
}
