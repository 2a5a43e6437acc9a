package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rrens/qorix-chat/internal/llm"
	"github.com/Rrens/qorix-chat/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLI(t *testing.T) {
	t.Helper()
	dir := t.TempDir()

	yaml := fmt.Sprintf(`
storage:
  driver: sqlite
  sqlite:
    path: %s
uploads:
  dir: %s
llm:
  provider: openrouter
`, filepath.Join(dir, "qorix.db"), filepath.Join(dir, "uploads"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("VITE_OPENROUTER_API_KEY", "")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("ENCRYPTION_SECRET", "")
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestCLI_Sessions(t *testing.T) {
	setupCLI(t)

	id := strings.TrimSpace(run(t, "sessions", "new"))
	require.NotEmpty(t, id)

	list := run(t, "sessions", "list")
	lines := strings.Split(strings.TrimSpace(list), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "* "+id), "new session is listed first and active: %q", lines[0])

	transcript := run(t, "sessions", "select", id)
	assert.Contains(t, transcript, "# New Conversation ("+id+")")

	deleteForce = true
	t.Cleanup(func() { deleteForce = false })
	run(t, "sessions", "delete", id)

	list = run(t, "sessions", "list")
	assert.NotContains(t, list, id)
}

func TestCLI_SendWithoutCredential(t *testing.T) {
	setupCLI(t)

	reply := run(t, "send", "hello")
	assert.Equal(t, llm.MsgMissingCredential+"\n", reply)

	transcript := run(t, "sessions", "list")
	assert.Contains(t, transcript, "hello")
	assert.Contains(t, transcript, "2 messages")
}

func TestCLI_Settings(t *testing.T) {
	setupCLI(t)

	run(t, "settings", "theme", "dark")
	assert.Equal(t, "API key saved.\n", run(t, "settings", "api-key", "sk-or-cli"))

	out := run(t, "settings")
	assert.Contains(t, out, "theme:    dark")
	assert.Contains(t, out, "api key:  true")
	assert.Contains(t, out, "provider: openrouter")
}

func TestCLI_Token(t *testing.T) {
	setupCLI(t)

	token := strings.TrimSpace(run(t, "token", "--subject", "alice"))
	claims, err := security.NewJWTManager("cli-secret", 0).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}
