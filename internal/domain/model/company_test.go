package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"legal suffix stripped", "Lakeside Behavioral Health, LLC", "lakeside behavioral"},
		{"descriptor words stripped", "Harbor Psychiatry Group", "harbor psychiatry"},
		{"whole words only", "Inclusive Care", "inclusive care"},
		{"hyphens kept", "Well-Mind Clinic", "well-mind clinic"},
		{"punctuation collapsed", "Acme  /  Behavioral!", "acme behavioral"},
		{"all suffix words fall back", "The Group Inc", "the group inc"},
		{"empty", "   ", ""},
		{"no alphanumerics", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCompanyName(tt.input))
		})
	}
}

func TestMergeCompaniesRequestValidate(t *testing.T) {
	assert.NoError(t, (&MergeCompaniesRequest{KeepID: "a", MergeID: "b"}).Validate())
	assert.Error(t, (&MergeCompaniesRequest{KeepID: "", MergeID: "b"}).Validate())
	assert.Error(t, (&MergeCompaniesRequest{KeepID: "a", MergeID: ""}).Validate())
	assert.Error(t, (&MergeCompaniesRequest{KeepID: "a", MergeID: "a"}).Validate())
}
