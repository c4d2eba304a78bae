package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, Confirm(strings.NewReader(tt.input), &out, "Send transaction?"), "%q", tt.input)
		assert.Contains(t, out.String(), "Send transaction?")
	}
}

func TestSpinnerStartStop(t *testing.T) {
	var out bytes.Buffer
	s := NewSpinner(&out, "waiting for receipt")
	s.Start()
	s.Stop()
	assert.Contains(t, out.String(), "waiting for receipt")
}
