package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"stories": 3}))
	assert.Equal(t, "{\n  \"stories\": 3\n}\n", buf.String())

	assert.Error(t, PrintJSON(&buf, make(chan int)))
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"":                        "/dashboard",
		"/projects/abc":           "/projects/abc",
		"/projects?tab=personas":  "/projects?tab=personas",
		"https://evil.example/":   "/dashboard",
		"//evil.example":          "/dashboard",
		"/\\evil.example":         "/dashboard",
		"javascript:alert(1)":     "/dashboard",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeRedirect(in, "/dashboard"), in)
	}
}
