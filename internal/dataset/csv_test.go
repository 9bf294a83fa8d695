package dataset

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	content := "subject,body,label\nhello,\"line one\nline two\",ham\nalert,click here,phishing\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	columns, rows, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"subject", "body", "label"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, "line one\nline two", rows[0]["body"])
	assert.Equal(t, "phishing", rows[1]["label"])
}

func TestLoadCSVLatin1Fallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.csv")
	// 0xE9 is é in Latin-1 and invalid standalone UTF-8.
	content := []byte("subject,label\nr\xe9sum\xe9,ham\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, rows, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "résumé", rows[0]["subject"])
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestLoadCSVRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	content := "subject,body,label\nonly-subject\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, rows, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "only-subject", rows[0]["subject"])
	assert.Equal(t, "", rows[0]["body"])
}

func TestWriteJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	records := []Record{
		{Subject: "a", Body: "b", Label: LabelPhishing, URLs: []string{"http://x.test"}},
		{Subject: "c", Body: "d", Label: LabelLegitimate},
	}
	require.NoError(t, WriteJSONL(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		got = append(got, rec)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, records, got)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	records := []Record{
		{
			Subject:  "verify",
			Body:     "click http://evil.test",
			URLs:     []string{"http://evil.test"},
			Metadata: Metadata{From: "x@evil.test", Source: "s.csv"},
			Label:    LabelPhishing,
		},
	}
	require.NoError(t, WriteCSV(path, records))

	columns, rows, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"subject", "body", "urls", "from", "source", "label"}, columns)
	require.Len(t, rows, 1)
	assert.Equal(t, "verify", rows[0]["subject"])
	assert.Equal(t, "http://evil.test", rows[0]["urls"])
	assert.Equal(t, LabelPhishing, rows[0]["label"])
}
