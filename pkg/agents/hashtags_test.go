package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "two tags",
			content: "Great day! #AI #Growth",
			want:    []string{"AI", "Growth"},
		},
		{
			name:    "no tags",
			content: "no tags here",
			want:    []string{},
		},
		{
			name:    "underscores and digits",
			content: "#web3 #machine_learning rocks",
			want:    []string{"web3", "machine_learning"},
		},
		{
			name:    "tag mid sentence",
			content: "Shipping the #roadmap today, finally.",
			want:    []string{"roadmap"},
		},
		{
			name:    "empty content",
			content: "",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHashtags(tt.content))
		})
	}
}
