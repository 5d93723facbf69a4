package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fencedReply = "The door creaks open.\n```json\n" +
	`{"mainText": "You step into the hall.", "options": {"option1": "Go upstairs", "option2": "Check the kitchen", "option3": "Call out to whoever is there"}, "coreState": {"trust": 40, "reasoning": "She is curious but careful"}}` +
	"\n```"

// execute runs the CLI in-process with a clean environment for the settings it reads.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return executeWithEnv(t, nil, stdin, args...)
}

func executeWithEnv(t *testing.T, env map[string]string, stdin string, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "GEMINI_MODEL", "PORT", "LOG_LEVEL", "LOG_FORMAT", "JWT_SECRET", "JWT_EXPIRATION_HOURS", "JWT_ISSUER", "BCRYPT_COST"} {
		t.Setenv(key, env[key])
	}

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
