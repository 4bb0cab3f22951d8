package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DragX-cyber/Legal-Mate/internal/analysis"
	"github.com/DragX-cyber/Legal-Mate/internal/llm"
	"github.com/DragX-cyber/Legal-Mate/internal/sessions"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/metrics"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/telemetry"
)

// ErrEmptyMessage is returned for a blank user message.
var ErrEmptyMessage = errors.New("empty message")

// Assembler builds the prompt context for each chat turn from the
// stored assessment plus a bounded window of prior turns, invokes the
// model, and appends the exchange to the transcript.
type Assembler struct {
	LLM            llm.Client
	Sessions       *sessions.Service
	HistoryWindow  int
	MaxDocChars    int
	MaxRetries     int
	RetryBaseDelay time.Duration
}

func NewAssembler(client llm.Client, svc *sessions.Service, historyWindow, maxDocChars, maxRetries int, retryBaseDelay time.Duration) *Assembler {
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	return &Assembler{
		LLM:            client,
		Sessions:       svc,
		HistoryWindow:  historyWindow,
		MaxDocChars:    maxDocChars,
		MaxRetries:     maxRetries,
		RetryBaseDelay: retryBaseDelay,
	}
}

// Respond handles one chat message. The session lock is held for the
// whole read-generate-append cycle, so turns on one session serialize
// while other sessions proceed in parallel. The user message and the
// assistant reply land as one atomic append: a failed model call leaves
// the transcript untouched.
func (a *Assembler) Respond(ctx context.Context, userID, sessionID, message string) (sessions.Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return sessions.Turn{}, ErrEmptyMessage
	}

	started := time.Now()

	release := a.Sessions.Lock(sessionID)
	defer release()

	session, turns, err := a.Sessions.History(ctx, userID, sessionID)
	if err != nil {
		metrics.IncChatFailed()
		return sessions.Turn{}, err
	}

	client := analysis.NewRetryingClient(a.LLM, a.MaxRetries, a.RetryBaseDelay)
	reply, err := client.Generate(ctx, llm.GenerateRequest{
		System: buildSystemContext(session, a.MaxDocChars),
		Prompt: buildChatPrompt(lastTurns(turns, a.HistoryWindow), message),
	})
	if err != nil {
		metrics.IncChatFailed()
		return sessions.Turn{}, analysis.ClassifyModelError(err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		metrics.IncChatFailed()
		return sessions.Turn{}, analysis.ClassifyModelError(errors.New("empty model reply"))
	}

	if err := a.Sessions.AppendExchange(ctx, userID, sessionID, message, reply); err != nil {
		metrics.IncChatFailed()
		return sessions.Turn{}, err
	}

	metrics.IncChatTurn()
	metrics.ObserveChatDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("chat turn", map[string]any{
		"session_id":  sessionID,
		"history":     len(turns),
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return sessions.Turn{
		Role:      sessions.RoleAssistant,
		Text:      reply,
		CreatedAt: time.Now().UTC(),
	}, nil
}
