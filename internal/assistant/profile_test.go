package assistant

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinProfiles(t *testing.T) {
	t.Parallel()

	w, ok := BuiltinProfile(ProfileWidget)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(w.Greeting, "Hi! I'm SafeFlow's AI assistant."))
	require.Contains(t, w.Preamble, "Keep responses under 100 words")
	require.Contains(t, w.Preamble, "⚠️ for warnings")

	f, ok := BuiltinProfile(ProfileFraudAlert)
	require.True(t, ok)
	require.Equal(t, TagWarning, f.Classifier().Classify("That request looks suspicious."))
	require.Equal(t, TagInfo, w.Classifier().Classify("That request looks suspicious."))

	_, ok = BuiltinProfile("nope")
	require.False(t, ok)
}

func TestBuiltinProfileReturnsCopy(t *testing.T) {
	t.Parallel()

	f, _ := BuiltinProfile(ProfileFraudAlert)
	f.WarningMarkers[0] = "changed"
	again, _ := BuiltinProfile(ProfileFraudAlert)
	require.Equal(t, "suspicious", again.WarningMarkers[0])
}

func TestCatalogLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profiles.yaml")
	data := `profiles:
  - name: merchant-desk
    title: Merchant Desk
    greeting: Namaste! Ask me about settlement delays.
    warning_markers: [chargeback]
    success_markers: [settled]
  - name: widget
    greeting: Overridden greeting
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cat := NewCatalog()
	require.NoError(t, cat.LoadFile(path))
	require.Equal(t, []string{"fraud-alert", "merchant-desk", "widget"}, cat.Names())

	m, err := cat.Get("merchant-desk")
	require.NoError(t, err)
	require.Equal(t, "Merchant Desk", m.Title)
	require.Equal(t, failureReply, m.FailureReply)
	require.Equal(t, defaultReply, m.DefaultReply)
	require.NotEmpty(t, m.Preamble)
	require.Equal(t, TagWarning, m.Classifier().Classify("possible chargeback"))
	require.Equal(t, TagSuccess, m.Classifier().Classify("payment settled"))

	w, err := cat.Get("widget")
	require.NoError(t, err)
	require.Equal(t, "Overridden greeting", w.Greeting)
	require.Equal(t, "widget", w.Title)

	_, err = cat.Get("missing")
	require.ErrorContains(t, err, "unknown profile")
}

func TestCatalogLoadFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cat := NewCatalog()
	require.Error(t, cat.LoadFile(filepath.Join(dir, "absent.yaml")))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("profiles: [ {name: "), 0o600))
	require.Error(t, cat.LoadFile(bad))

	nameless := filepath.Join(dir, "nameless.yaml")
	require.NoError(t, os.WriteFile(nameless, []byte("profiles:\n  - greeting: hi\n"), 0o600))
	require.ErrorContains(t, cat.LoadFile(nameless), "no name")
}

func TestFraudAlertQuickPrompts(t *testing.T) {
	t.Parallel()

	f, _ := BuiltinProfile(ProfileFraudAlert)
	require.Len(t, f.QuickPrompts, 3)
	require.Contains(t, f.QuickPrompts[0], "suspicious")

	w, _ := BuiltinProfile(ProfileWidget)
	require.Empty(t, w.QuickPrompts)
}
