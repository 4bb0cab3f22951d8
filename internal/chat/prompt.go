package chat

import (
	"fmt"
	"strings"

	"github.com/DragX-cyber/Legal-Mate/internal/sessions"
)

// buildSystemContext grounds the model in the session's assessment so
// answers cite the flagged clauses instead of hallucinating new ones.
func buildSystemContext(session *sessions.Session, maxDocChars int) string {
	var b strings.Builder
	b.WriteString(`You are a legal assistant answering follow-up questions about a contract
that has already been analyzed. Ground every answer in the risk
assessment and contract text below. When a question touches a flagged
clause, cite it by its clause type. If the answer is not supported by
the contract, say so plainly. You are not a substitute for a lawyer and
should say so when asked for definitive legal advice.`)
	b.WriteString("\n\n")

	profile := session.Profile
	if !profile.IsZero() {
		b.WriteString("The user's context:\n")
		if profile.Industry != "" {
			fmt.Fprintf(&b, "- Industry: %s\n", profile.Industry)
		}
		if profile.Role != "" {
			fmt.Fprintf(&b, "- Role: %s\n", profile.Role)
		}
		if profile.RiskTolerance != "" {
			fmt.Fprintf(&b, "- Risk tolerance: %s\n", profile.RiskTolerance)
		}
		b.WriteString("Tailor explanations to this context.\n\n")
	}

	a := session.Assessment
	fmt.Fprintf(&b, "Risk assessment summary: %s\n", a.Summary)
	fmt.Fprintf(&b, "Overall risk score: %d/100\n\n", a.OverallRiskScore)

	if len(a.Clauses) == 0 {
		b.WriteString("No clauses were flagged as risky.\n")
	} else {
		b.WriteString("Flagged clauses:\n")
		for i, c := range a.Clauses {
			fmt.Fprintf(&b, "%d. [%s] %s risk: %q\n   Why: %s\n", i+1, c.ClauseType, c.RiskLevel, c.Snippet, c.Rationale)
			if c.Recommendation != "" {
				fmt.Fprintf(&b, "   Suggestion: %s\n", c.Recommendation)
			}
		}
	}

	if text := session.ContractText; text != "" {
		b.WriteString("\nContract text:\n\"\"\"\n")
		b.WriteString(truncate(text, maxDocChars))
		b.WriteString("\n\"\"\"")
	}
	return b.String()
}

// buildChatPrompt replays the windowed transcript and appends the new
// user message as the final turn.
func buildChatPrompt(history []sessions.Turn, message string) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, t := range history {
			label := "User"
			if t.Role == sessions.RoleAssistant {
				label = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", label, t.Text)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User: %s\nAssistant:", message)
	return b.String()
}

func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return strings.TrimRight(string(runes[:maxChars]), " \n")
}
