package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/practicejobs/ingest/internal/domain/model"
)

const summaryMaxLen = 280

var (
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	spacesRe = regexp.MustCompile(`\s+`)
)

// Candidate converts a raw posting into a validated CandidateJob ready for
// identity resolution. Salary is parsed from the dedicated salary field first
// and falls back to the title and description text.
func Candidate(raw model.RawJob) (model.CandidateJob, error) {
	raw.Title = CleanText(raw.Title)
	raw.Employer = CleanText(raw.Employer)
	raw.Location = CleanText(raw.Location)

	if err := raw.Validate(); err != nil {
		return model.CandidateJob{}, fmt.Errorf("invalid posting %s/%s: %w", raw.Provider, raw.ExternalID, err)
	}

	salary := ParseSalary(raw.SalaryText)
	if !salary.Present() {
		salary = ParseSalary(raw.Title + " " + raw.Description)
	}

	return model.CandidateJob{
		Raw:      raw,
		Salary:   salary,
		Location: ParseLocation(raw.Location),
		Summary:  Summarize(raw.Description),
	}, nil
}

// CleanText strips markup and collapses whitespace in a short text field.
func CleanText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// Summarize produces a short plain-text extract of a description for list
// views, cut at a word boundary.
func Summarize(description string) string {
	text := CleanText(description)
	if len(text) <= summaryMaxLen {
		return text
	}

	cut := summaryMaxLen
	for cut > 0 && !unicode.IsSpace(rune(text[cut])) {
		cut--
	}
	if cut == 0 {
		cut = summaryMaxLen
	}
	return strings.TrimRight(text[:cut], " ,;:") + "…"
}
