// Package chatsync keeps one conversation view fresh over a plain REST
// surface: fixed-interval polling, a content fingerprint so unchanged
// responses never touch view state, and scroll handling that only follows
// the tail when the reader is already there.
package chatsync

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"unimarket/internal/app/dto"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultNearBottomPx = 100
)

var (
	ErrEmptyMessage   = errors.New("chatsync: message text is empty")
	ErrSendInFlight   = errors.New("chatsync: a send is already in flight")
	ErrNoConversation = errors.New("chatsync: no conversation selected")
)

// API is the slice of the REST client the synchronizer needs.
type API interface {
	Messages(ctx context.Context, conversationID int64) ([]dto.ChatMessage, error)
	Conversation(ctx context.Context, conversationID int64) (dto.Conversation, error)
	SendMessage(ctx context.Context, conversationID int64, content string) (dto.ChatMessage, error)
	MarkRead(ctx context.Context, conversationID int64) error
}

// Viewport abstracts the scroll container of the message list. NearBottom
// must report from the container's *current* state; the synchronizer always
// asks before it commits new content, because the commit changes the
// scrollable height.
type Viewport interface {
	NearBottom(thresholdPx int) bool
	ScrollToBottom()
}

// Snapshot is the committed view state handed to renderers.
type Snapshot struct {
	ConversationID int64
	Conversation   *dto.Conversation
	Messages       []dto.ChatMessage
	// Appended counts messages added by the latest commit; renderers that
	// only paint the tail (the terminal client) use it to avoid reprinting
	// history.
	Appended  int
	FirstLoad bool
}

// Config tunes the synchronizer. Zero values take the defaults.
type Config struct {
	PollInterval time.Duration
	NearBottomPx int
}

// Syncer polls a single conversation and reconciles results into view
// state. One Syncer serves one mounted view; switching conversations resets
// all per-conversation tracking so nothing leaks between threads.
type Syncer struct {
	api      API
	viewport Viewport
	logger   *slog.Logger
	interval time.Duration
	nearPx   int
	onUpdate func(Snapshot)

	// cycleMu serializes sync cycles. Run ticks that land while a cycle is
	// still in flight are skipped rather than queued; the next tick retries.
	cycleMu sync.Mutex

	mu             sync.Mutex
	conversationID int64
	conversation   *dto.Conversation
	messages       []dto.ChatMessage
	fingerprint    [sha256.Size]byte
	loaded         bool
	sending        bool
}

func New(client API, viewport Viewport, cfg Config, logger *slog.Logger) *Syncer {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	nearPx := cfg.NearBottomPx
	if nearPx <= 0 {
		nearPx = defaultNearBottomPx
	}
	return &Syncer{
		api:      client,
		viewport: viewport,
		logger:   logger,
		interval: interval,
		nearPx:   nearPx,
	}
}

// OnUpdate registers the render hook. It fires only when a cycle actually
// commits state, never for a fingerprint match.
func (s *Syncer) OnUpdate(fn func(Snapshot)) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// SwitchConversation points the view at another thread and drops every piece
// of per-conversation state. Results of a fetch started for the previous
// conversation are discarded when they land.
func (s *Syncer) SwitchConversation(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversationID == id {
		return
	}
	s.conversationID = id
	s.conversation = nil
	s.messages = nil
	s.fingerprint = [sha256.Size]byte{}
	s.loaded = false
}

// Run polls until ctx is cancelled, starting with an immediate cycle.
// Cancelling ctx is the unmount: the ticker stops and no further state is
// committed from this loop.
func (s *Syncer) Run(ctx context.Context) {
	s.SyncOnce(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.cycleMu.TryLock() {
				// Previous cycle still running; skip this tick.
				continue
			}
			s.cycle(ctx)
			s.cycleMu.Unlock()
		}
	}
}

// SyncOnce runs one full cycle, waiting for any in-flight cycle to finish
// first. Errors are logged and swallowed; the next tick is the retry.
func (s *Syncer) SyncOnce(ctx context.Context) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
	s.cycle(ctx)
}

// Send posts text to the current conversation, then refreshes immediately
// instead of waiting for the next tick and forces the view to the bottom:
// the user just authored the newest message. There is no local echo; the
// refreshed server list is the only source of truth.
func (s *Syncer) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	convID := s.conversationID
	if convID == 0 {
		s.mu.Unlock()
		return ErrNoConversation
	}
	s.sending = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	if _, err := s.api.SendMessage(ctx, convID, text); err != nil {
		return err
	}
	s.SyncOnce(ctx)
	s.viewport.ScrollToBottom()
	return nil
}

// Sending reports whether a Send is in flight, so the input control can be
// disabled while it resolves.
func (s *Syncer) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// Snapshot returns a copy of the committed view state.
func (s *Syncer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ConversationID: s.conversationID,
		Conversation:   s.conversation,
		Messages:       append([]dto.ChatMessage(nil), s.messages...),
	}
}

// cycle is one fetch-reconcile-mark pass. Callers hold cycleMu.
func (s *Syncer) cycle(ctx context.Context) {
	s.mu.Lock()
	convID := s.conversationID
	s.mu.Unlock()
	if convID == 0 {
		return
	}

	messages, err := s.api.Messages(ctx, convID)
	if err != nil {
		s.logWarn("message poll failed", convID, err)
	} else {
		s.applyMessages(convID, messages)
	}

	// Metadata refresh and read marking run regardless of whether the
	// message list changed.
	conversation, err := s.api.Conversation(ctx, convID)
	if err != nil {
		s.logWarn("conversation refresh failed", convID, err)
	} else {
		s.applyConversation(convID, conversation)
	}

	if err := s.api.MarkRead(ctx, convID); err != nil && s.logger != nil {
		s.logger.Debug("mark read failed", "conversation_id", convID, "error", err)
	}
}

// applyMessages commits a fetched list unless it is stale (conversation
// switched since the fetch started) or identical to the last applied list.
func (s *Syncer) applyMessages(convID int64, messages []dto.ChatMessage) {
	fp := fingerprint(messages)

	s.mu.Lock()
	if convID != s.conversationID {
		// Fetch outlived a navigation; its results belong to another view.
		s.mu.Unlock()
		return
	}
	if s.loaded && fp == s.fingerprint {
		s.mu.Unlock()
		return
	}
	firstLoad := !s.loaded
	appended := len(messages) - len(s.messages)
	if firstLoad || appended < 0 {
		appended = len(messages)
	}
	onUpdate := s.onUpdate
	conversation := s.conversation
	s.mu.Unlock()

	// Measure before committing: the commit re-renders and changes the
	// scrollable height, which would poison the reading.
	nearBottom := s.viewport.NearBottom(s.nearPx)

	s.mu.Lock()
	if convID != s.conversationID {
		s.mu.Unlock()
		return
	}
	s.messages = messages
	s.fingerprint = fp
	s.loaded = true
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(Snapshot{
			ConversationID: convID,
			Conversation:   conversation,
			Messages:       append([]dto.ChatMessage(nil), messages...),
			Appended:       appended,
			FirstLoad:      firstLoad,
		})
	}
	if firstLoad || nearBottom {
		s.viewport.ScrollToBottom()
	}
}

func (s *Syncer) applyConversation(convID int64, conversation dto.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if convID != s.conversationID {
		return
	}
	s.conversation = &conversation
}

func (s *Syncer) logWarn(msg string, convID int64, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, "conversation_id", convID, "error", err)
}

// fingerprint hashes the JSON encoding of the list. Two byte-identical
// server responses always collapse to the same value, so a no-op poll never
// re-renders or scrolls.
func fingerprint(messages []dto.ChatMessage) [sha256.Size]byte {
	encoded, err := json.Marshal(messages)
	if err != nil {
		// Wire types marshal by construction; an error here means the list
		// differs from anything previously hashed anyway.
		return sha256.Sum256([]byte(err.Error()))
	}
	return sha256.Sum256(encoded)
}
