package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLeadsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadLeadsJSONArray(t *testing.T) {
	path := writeLeadsFile(t, `[
		{"tool_name_on_directory": "MagicTool", "external_website_url": "https://magictool.ai", "source_directory": "futuretools"},
		{"tool_name_on_directory": "OtherTool", "external_website_url": "https://othertool.ai"}
	]`)

	leads, err := ReadLeads(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "MagicTool", leads[0].DisplayName)
	assert.Equal(t, "futuretools", leads[0].SourceDirectory)
	assert.Equal(t, "https://othertool.ai", leads[1].SourceURL)
}

func TestReadLeadsJSONArrayWithLeadingWhitespace(t *testing.T) {
	path := writeLeadsFile(t, "\n\t [{\"tool_name_on_directory\": \"MagicTool\", \"external_website_url\": \"https://magictool.ai\"}]")

	leads, err := ReadLeads(path)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "MagicTool", leads[0].DisplayName)
}

func TestReadLeadsJSONL(t *testing.T) {
	path := writeLeadsFile(t, `{"tool_name_on_directory": "MagicTool", "external_website_url": "https://magictool.ai"}

{"tool_name_on_directory": "OtherTool", "external_website_url": "https://othertool.ai"}
`)

	leads, err := ReadLeads(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "OtherTool", leads[1].DisplayName)
}

func TestReadLeadsJSONLBadLine(t *testing.T) {
	path := writeLeadsFile(t, `{"tool_name_on_directory": "MagicTool", "external_website_url": "https://magictool.ai"}
not json at all
`)

	_, err := ReadLeads(path)
	assert.ErrorContains(t, err, "line 2")
}

func TestReadLeadsMissingFile(t *testing.T) {
	_, err := ReadLeads(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "open leads file")
}
