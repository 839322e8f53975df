package model

import (
	"errors"
	"strings"
	"time"
)

// legalSuffixes are corporate/legal words stripped from employer names during
// normalization. Matched as whole words only, so "Inclusive Care" keeps its
// "inc" prefix.
var legalSuffixes = map[string]struct{}{
	"inc":          {},
	"incorporated": {},
	"llc":          {},
	"llp":          {},
	"ltd":          {},
	"limited":      {},
	"corp":         {},
	"corporation":  {},
	"co":           {},
	"company":      {},
	"pc":           {},
	"pllc":         {},
	"health":       {},
	"healthcare":   {},
	"medical":      {},
	"group":        {},
	"services":     {},
	"solutions":    {},
	"staffing":     {},
	"partners":     {},
	"associates":   {},
	"the":          {},
}

// Company is the persisted canonical employer entity.
type Company struct {
	ID             string    `json:"id"              db:"id"`
	Name           string    `json:"name"            db:"name"`
	NormalizedName string    `json:"normalized_name" db:"normalized_name"`
	Aliases        []string  `json:"aliases"         db:"aliases"`
	JobCount       int       `json:"job_count"       db:"job_count"`
	IsVerified     bool      `json:"is_verified"     db:"is_verified"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
}

// NormalizeCompanyName reduces an employer string to its canonical lookup
// key: lowercase, legal suffixes stripped as whole words, non-alphanumeric
// characters removed (hyphens kept), whitespace collapsed.
func NormalizeCompanyName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))

	var cleaned strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-':
			cleaned.WriteRune(r)
		default:
			cleaned.WriteByte(' ')
		}
	}

	words := strings.Fields(cleaned.String())
	kept := words[:0]
	for _, w := range words {
		if _, drop := legalSuffixes[w]; drop {
			continue
		}
		kept = append(kept, w)
	}
	// An employer made up entirely of suffix words ("The Group Inc") still
	// needs a non-empty key; fall back to the cleaned form.
	if len(kept) == 0 {
		kept = words
	}
	return strings.Join(kept, " ")
}

// CreateCompanyRequest represents a request to create a new company record.
type CreateCompanyRequest struct {
	Name  string
	Alias string
}

// Validate validates the CreateCompanyRequest fields.
func (r *CreateCompanyRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required and cannot be empty")
	}
	if NormalizeCompanyName(r.Name) == "" {
		return errors.New("name must contain at least one alphanumeric character")
	}
	return nil
}

// MergeCompaniesRequest asks the resolver to absorb MergeID into KeepID.
type MergeCompaniesRequest struct {
	KeepID  string `json:"keep_id"`
	MergeID string `json:"merge_id"`
}

// Validate validates the MergeCompaniesRequest fields.
func (r *MergeCompaniesRequest) Validate() error {
	if strings.TrimSpace(r.KeepID) == "" {
		return errors.New("keep_id is required")
	}
	if strings.TrimSpace(r.MergeID) == "" {
		return errors.New("merge_id is required")
	}
	if r.KeepID == r.MergeID {
		return errors.New("keep_id and merge_id must differ")
	}
	return nil
}
