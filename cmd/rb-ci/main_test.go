package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"без аргументов", nil, ""},
		{"команда", []string{"smoke-pages"}, "smoke-pages"},
		{"лишние аргументы игнорируются", []string{"version", "--verbose"}, "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandFromArgs(tt.args))
		})
	}
}
