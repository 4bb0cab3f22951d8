package analysis

import (
	"fmt"
	"strings"
)

// RiskLevel grades a single clause.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ParseRiskLevel maps a model-emitted token to a RiskLevel.
// Matching is case-insensitive; anything outside the four levels is an error.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "medium", "moderate":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	case "critical":
		return RiskCritical, nil
	default:
		return "", fmt.Errorf("unknown risk level %q", s)
	}
}

// rank orders risk levels for aggregation; higher is riskier.
func (r RiskLevel) rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

// MoreSevere reports whether r outranks other.
func (r RiskLevel) MoreSevere(other RiskLevel) bool {
	return r.rank() > other.rank()
}

// UserProfile carries the optional context that personalizes an assessment
// and every follow-up answer in the session.
type UserProfile struct {
	Industry      string `json:"industry,omitempty"`
	Role          string `json:"role,omitempty"`
	RiskTolerance string `json:"riskTolerance,omitempty"`
}

// IsZero reports whether no profile fields are set.
func (p UserProfile) IsZero() bool {
	return p.Industry == "" && p.Role == "" && p.RiskTolerance == ""
}

// Clause is one flagged contract provision.
type Clause struct {
	ClauseType     string    `json:"clauseType"`
	Snippet        string    `json:"snippet"`
	StartOffset    int       `json:"startOffset"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	Rationale      string    `json:"rationale"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// RiskAssessment is the structured output of one analysis run.
type RiskAssessment struct {
	Summary          string   `json:"summary"`
	OverallRiskScore int      `json:"overallRiskScore"`
	Clauses          []Clause `json:"clauses"`
}

// HighestRisk returns the most severe clause level, or RiskLow when no
// clauses were flagged.
func (a RiskAssessment) HighestRisk() RiskLevel {
	highest := RiskLow
	for _, c := range a.Clauses {
		if c.RiskLevel.MoreSevere(highest) {
			highest = c.RiskLevel
		}
	}
	return highest
}
