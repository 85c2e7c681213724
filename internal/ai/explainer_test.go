package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanResponseStripsFences(t *testing.T) {
	cases := map[string]string{
		"plain explanation":                          "plain explanation",
		"```\nfenced explanation\n```":               "fenced explanation",
		"```text\nfenced with language tag\n```":     "fenced with language tag",
		"  \n```\nleading whitespace and fence\n```": "leading whitespace and fence",
	}
	for input, want := range cases {
		assert.Equal(t, want, cleanResponse(input))
	}
}

func TestGuessLanguage(t *testing.T) {
	assert.Equal(t, "go", GuessLanguage("package main\n\nfunc main() {}"))
	assert.Equal(t, "python", GuessLanguage("def handler(event):\n    pass"))
	assert.Equal(t, "java", GuessLanguage("public static void main(String[] args) {"))
	assert.Equal(t, "c", GuessLanguage("#include <stdio.h>\nint main(void) {"))
	assert.Equal(t, "", GuessLanguage("completely unrecognizable text"))
}

func TestServiceErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := serviceErr("openai", "chat completion failed: connection refused", cause)

	assert.Equal(t, "openai: chat completion failed: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))

	var svcErr *ServiceError
	require.ErrorAs(t, error(err), &svcErr)
	assert.Equal(t, "openai", svcErr.Provider)
}

func TestDecodeDataURL(t *testing.T) {
	data, mime, err := decodeDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "png", mime)

	// Bare base64 without a data URL header defaults to jpeg
	data, mime, err = decodeDataURL("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "jpeg", mime)

	_, _, err = decodeDataURL("data:image/png;base64,!!!notbase64")
	assert.Error(t, err)
}
