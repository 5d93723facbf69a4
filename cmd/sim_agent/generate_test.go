package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kaldeqca/sex-sim-ai/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	reply   string
	prompts []string
	tiers   []llm.ModelTier
	closed  bool
}

func (c *fakeClient) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	c.prompts = append(c.prompts, prompt)
	c.tiers = append(c.tiers, tier)
	return c.reply, nil
}

func (c *fakeClient) Close() error {
	c.closed = true
	return nil
}

func stubClient(t *testing.T, client *fakeClient) *llm.Config {
	t.Helper()
	var used llm.Config
	orig := newLLMClient
	newLLMClient = func(_ context.Context, cfg *llm.Config, apiKey string) (llm.Client, error) {
		if cfg != nil {
			used = *cfg
		}
		return client, nil
	}
	t.Cleanup(func() { newLLMClient = orig })
	return &used
}

func TestGenerate(t *testing.T) {
	client := &fakeClient{reply: fencedReply}
	used := stubClient(t, client)

	dir := t.TempDir()
	reqPath := writeFile(t, dir, "request.json",
		`{"mode": "realistic", "character": {"name": "Mia"}, "history": [{"action": "Wave", "mainText": "She waves back."}], "action": "Knock on the door"}`)

	stdout, _, err := execute(t, "", "generate", "--api-key", "test-key", "-r", reqPath, "--model", "custom-model")
	require.NoError(t, err)

	var out parseOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "You step into the hall.", out.Record.MainText)
	assert.Equal(t, "parsed", out.Status)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Knock on the door")
	assert.Contains(t, client.prompts[0], "Mia")
	assert.Equal(t, llm.TierForMode("realistic"), client.tiers[0])
	assert.Equal(t, "custom-model", used.GetModel(client.tiers[0]))
	assert.True(t, client.closed)
}

func TestGenerate_ActionFlagOverridesRequest(t *testing.T) {
	client := &fakeClient{reply: fencedReply}
	stubClient(t, client)

	dir := t.TempDir()
	reqPath := writeFile(t, dir, "request.json", `{"action": "Leave"}`)

	_, _, err := execute(t, "", "generate", "--api-key", "test-key", "-r", reqPath, "-a", "Stay a while")
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Stay a while")
	assert.NotContains(t, client.prompts[0], "Leave")
}

func TestGenerate_Errors(t *testing.T) {
	stubClient(t, &fakeClient{reply: fencedReply})

	_, _, err := execute(t, "", "generate", "-a", "Knock")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")

	_, _, err = execute(t, "", "generate", "--api-key", "test-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action is required")

	_, _, err = executeWithEnv(t, map[string]string{"GEMINI_API_KEY": "env-key"}, "", "generate", "-r", "/nonexistent/request.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read request file")
}
