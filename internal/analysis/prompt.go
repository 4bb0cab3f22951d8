package analysis

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = `You are a meticulous legal risk analyst. You review contracts for the
counterparty who did NOT draft them and flag provisions that shift risk
onto that party. You respond with JSON only, never prose.`

const analysisSchemaBlock = `Respond with a single JSON object and nothing else, exactly this shape:
{
  "summary": "two or three sentence plain-language summary of the contract",
  "overallRiskScore": 0,
  "clauses": [
    {
      "clauseType": "short label such as Termination, Indemnification, Liability",
      "snippet": "EXACT verbatim excerpt copied from the contract text",
      "riskLevel": "low | medium | high | critical",
      "rationale": "why this clause is risky for the reviewing party",
      "recommendation": "concrete negotiation or redline suggestion"
    }
  ]
}
Rules:
- overallRiskScore is an integer from 0 (benign) to 100 (severe).
- Every snippet must be copied verbatim from the contract text, character for character.
- Flag every clause that carries meaningful risk; an empty clauses array is valid only for a genuinely benign document.
- riskLevel must be exactly one of: low, medium, high, critical.`

// buildAnalysisPrompt assembles the user-turn prompt for one analysis run.
// The document is truncated to maxChars before inclusion.
func buildAnalysisPrompt(text string, profile UserProfile, maxChars int) string {
	var b strings.Builder
	b.WriteString("Analyze the following contract for risk.\n\n")

	if !profile.IsZero() {
		b.WriteString("The reviewing party's context, which should shape which risks matter most:\n")
		if profile.Industry != "" {
			fmt.Fprintf(&b, "- Industry: %s\n", profile.Industry)
		}
		if profile.Role != "" {
			fmt.Fprintf(&b, "- Role: %s\n", profile.Role)
		}
		if profile.RiskTolerance != "" {
			fmt.Fprintf(&b, "- Risk tolerance: %s\n", profile.RiskTolerance)
		}
		b.WriteString("\n")
	}

	b.WriteString(analysisSchemaBlock)
	b.WriteString("\n\nContract text:\n\"\"\"\n")
	b.WriteString(truncate(text, maxChars))
	b.WriteString("\n\"\"\"")
	return b.String()
}

// truncate cuts text to at most maxChars runes, preferring a whitespace
// boundary near the cut so a clause is not split mid-word.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	cut := maxChars
	for i := maxChars; i > maxChars-200 && i > 0; i-- {
		if runes[i-1] == ' ' || runes[i-1] == '\n' {
			cut = i - 1
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), " \n")
}
