package sessions

import (
	"strings"
	"time"

	"github.com/DragX-cyber/Legal-Mate/internal/analysis"
)

// Turn roles. The transcript strictly alternates user then assistant.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is one analyzed contract plus its conversation state.
// ContractText holds the normalized extracted text; the uploaded bytes
// are never stored here.
type Session struct {
	ID           string                  `json:"id"`
	UserID       string                  `json:"-"`
	Title        string                  `json:"title"`
	ContractText string                  `json:"-"`
	Profile      analysis.UserProfile    `json:"profile"`
	Assessment   analysis.RiskAssessment `json:"assessment"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
	DeletedAt    *time.Time              `json:"-"`
}

// Turn is one message in a session transcript.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the list-view projection of a session.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	TurnCount int       `json:"turnCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const maxTitleLen = 80

// DeriveTitle picks a session title from the upload file name, falling
// back to the assessment summary's opening words.
func DeriveTitle(fileName, summary string) string {
	name := strings.TrimSpace(fileName)
	if name != "" {
		if dot := strings.LastIndex(name, "."); dot > 0 {
			name = name[:dot]
		}
		name = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name))
		if name != "" {
			return clip(name, maxTitleLen)
		}
	}
	if s := strings.TrimSpace(summary); s != "" {
		if dot := strings.Index(s, "."); dot > 0 {
			s = s[:dot]
		}
		return clip(s, maxTitleLen)
	}
	return "Contract review"
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
