package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEmbeddedTemplates(t *testing.T) {
	names, err := ListEmbeddedTemplates()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"page", "response"}, names)
}

func TestLoad_Embedded(t *testing.T) {
	tmpl, err := Load("")
	require.NoError(t, err)
	assert.NotNil(t, tmpl.Lookup(PageTemplate))
	assert.NotNil(t, tmpl.Lookup(ResponseTemplate))
}

func TestLoad_UserOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "response.html"), []byte(`<p id="custom">{{.Answer}}</p>`), 0644))

	tmpl, err := Load(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, ResponseTemplate, map[string]string{"Answer": "a < b"}))
	assert.Equal(t, `<p id="custom">a &lt; b</p>`, buf.String())
}

func TestLoad_InvalidOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte(`{{.Broken`), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template 'page'")
}

func TestGetTemplate_NotFound(t *testing.T) {
	_, err := GetTemplate("missing", "")
	require.Error(t, err)
}

func TestPageScript_SnapshotHandling(t *testing.T) {
	data, err := GetTemplate("page", "")
	require.NoError(t, err)
	script := string(data)

	// Error replies are not snapshots: they restore the controls instead of being applied
	assert.Contains(t, script, "typeof body.seq === 'number'")
	assert.Contains(t, script, "restore(body && body.error")
	assert.Contains(t, script, "submit.disabled = false")

	// Ordering is per session by version, and a new session resets it
	assert.Contains(t, script, "snap.session_id !== sessionId")
	assert.Contains(t, script, "lastVersion = -1")
	assert.Contains(t, script, "snap.version < lastVersion")
	assert.NotContains(t, script, "lastSeq")
}
