package chat

import "github.com/DragX-cyber/Legal-Mate/internal/sessions"

const defaultHistoryWindow = 20

// lastTurns returns the trailing window of the transcript. Older turns
// are dropped outright, never summarized, so prompt size stays bounded
// and behavior stays predictable.
func lastTurns(turns []sessions.Turn, n int) []sessions.Turn {
	if n <= 0 {
		n = defaultHistoryWindow
	}
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
