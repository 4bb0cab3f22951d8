package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

type wireAssessment struct {
	Summary          *string      `json:"summary"`
	OverallRiskScore *int         `json:"overallRiskScore"`
	Clauses          []wireClause `json:"clauses"`
}

type wireClause struct {
	ClauseType     string `json:"clauseType"`
	Snippet        string `json:"snippet"`
	RiskLevel      string `json:"riskLevel"`
	Rationale      string `json:"rationale"`
	Recommendation string `json:"recommendation"`
}

// parseAssessment validates the raw model reply against the assessment
// schema. Validation is all-or-nothing: any defect in any clause rejects
// the whole reply. source is the normalized contract text used to anchor
// snippet offsets.
func parseAssessment(raw string, source string) (RiskAssessment, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return RiskAssessment{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	var wire wireAssessment
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return RiskAssessment{}, fmt.Errorf("%w: decode: %v", ErrMalformedOutput, err)
	}

	if wire.Summary == nil || strings.TrimSpace(*wire.Summary) == "" {
		return RiskAssessment{}, fmt.Errorf("%w: missing summary", ErrMalformedOutput)
	}
	if wire.OverallRiskScore == nil {
		return RiskAssessment{}, fmt.Errorf("%w: missing overallRiskScore", ErrMalformedOutput)
	}
	score := *wire.OverallRiskScore
	if score < 0 || score > 100 {
		return RiskAssessment{}, fmt.Errorf("%w: overallRiskScore %d out of range", ErrMalformedOutput, score)
	}
	if wire.Clauses == nil {
		return RiskAssessment{}, fmt.Errorf("%w: missing clauses array", ErrMalformedOutput)
	}

	out := RiskAssessment{
		Summary:          strings.TrimSpace(*wire.Summary),
		OverallRiskScore: score,
		Clauses:          make([]Clause, 0, len(wire.Clauses)),
	}
	for i, wc := range wire.Clauses {
		clause, err := validateClause(wc, source)
		if err != nil {
			return RiskAssessment{}, fmt.Errorf("%w: clause[%d]: %v", ErrMalformedOutput, i, err)
		}
		out.Clauses = append(out.Clauses, clause)
	}
	return out, nil
}

func validateClause(wc wireClause, source string) (Clause, error) {
	if strings.TrimSpace(wc.ClauseType) == "" {
		return Clause{}, fmt.Errorf("missing clauseType")
	}
	snippet := strings.TrimSpace(wc.Snippet)
	if snippet == "" {
		return Clause{}, fmt.Errorf("missing snippet")
	}
	level, err := ParseRiskLevel(wc.RiskLevel)
	if err != nil {
		return Clause{}, err
	}
	if strings.TrimSpace(wc.Rationale) == "" {
		return Clause{}, fmt.Errorf("missing rationale")
	}

	offset := strings.Index(source, snippet)
	if offset < 0 {
		// Model snippets sometimes collapse interior whitespace differently
		// from the normalized source; retry the match on a collapsed view.
		offset = looseIndex(source, snippet)
	}
	if offset < 0 {
		return Clause{}, fmt.Errorf("snippet not found in document text")
	}

	return Clause{
		ClauseType:     strings.TrimSpace(wc.ClauseType),
		Snippet:        snippet,
		StartOffset:    offset,
		RiskLevel:      level,
		Rationale:      strings.TrimSpace(wc.Rationale),
		Recommendation: strings.TrimSpace(wc.Recommendation),
	}, nil
}

// looseIndex matches snippet against source treating any whitespace run
// as equivalent, returning the byte offset of the match start or -1.
func looseIndex(source, snippet string) int {
	words := strings.Fields(snippet)
	if len(words) == 0 {
		return -1
	}
	start := 0
	for {
		idx := strings.Index(source[start:], words[0])
		if idx < 0 {
			return -1
		}
		pos := start + idx
		if matchesFrom(source, pos, words) {
			return pos
		}
		start = pos + 1
	}
}

func matchesFrom(source string, pos int, words []string) bool {
	rest := source[pos:]
	for i, w := range words {
		if !strings.HasPrefix(rest, w) {
			return false
		}
		rest = rest[len(w):]
		if i == len(words)-1 {
			return true
		}
		trimmed := strings.TrimLeft(rest, " \t\n")
		if trimmed == rest {
			return false
		}
		rest = trimmed
	}
	return true
}

// extractJSONObject pulls the first balanced JSON object out of a model
// reply, tolerating markdown code fences and stray prose around it.
func extractJSONObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if fenced, ok := stripCodeFence(s); ok {
		s = fenced
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in reply")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in reply")
}

func stripCodeFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") {
		return "", false
	}
	body := s[3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}
