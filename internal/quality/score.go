// Package quality assigns each posting a deterministic completeness score.
package quality

import "strings"

// Signal weights. The sum of maximums exceeds 100 on purpose; Score clamps.
const (
	weightApplyLink       = 20
	weightSalaryExplicit  = 25
	weightSalaryEstimated = 12
	weightLocationFull    = 15
	weightLocationPartial = 8
	weightLocationRemote  = 5
	weightEmployerDirect  = 10
	weightPostedDate      = 10

	// Description length tiers, in characters of cleaned text.
	descTierFull   = 1200
	descTierSolid  = 600
	descTierBasic  = 200
	descFullScore  = 20
	descSolidScore = 14
	descBasicScore = 8
	descStubScore  = 3
)

// Input carries the posting signals the scorer weighs. It deliberately holds
// plain values rather than a Job so the score can be recomputed from either a
// candidate or a persisted row.
type Input struct {
	HasApplyLink    bool
	HasSalary       bool
	SalaryEstimated bool
	DescriptionLen  int
	City            string
	State           string
	Remote          bool
	EmployerDirect  bool
	HasPostedDate   bool
}

// Score computes the weighted additive quality score, clamped to [0, 100].
// Identical input always yields an identical score.
func Score(in Input) int {
	score := 0

	if in.HasApplyLink {
		score += weightApplyLink
	}

	if in.HasSalary {
		if in.SalaryEstimated {
			score += weightSalaryEstimated
		} else {
			score += weightSalaryExplicit
		}
	}

	score += descriptionScore(in.DescriptionLen)
	score += locationScore(in)

	if in.EmployerDirect {
		score += weightEmployerDirect
	}
	if in.HasPostedDate {
		score += weightPostedDate
	}

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

func descriptionScore(length int) int {
	switch {
	case length >= descTierFull:
		return descFullScore
	case length >= descTierSolid:
		return descSolidScore
	case length >= descTierBasic:
		return descBasicScore
	case length > 0:
		return descStubScore
	default:
		return 0
	}
}

func locationScore(in Input) int {
	city := strings.TrimSpace(in.City)
	state := strings.TrimSpace(in.State)
	switch {
	case city != "" && state != "":
		return weightLocationFull
	case city != "" || state != "":
		return weightLocationPartial
	case in.Remote:
		return weightLocationRemote
	default:
		return 0
	}
}
