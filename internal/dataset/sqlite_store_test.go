package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLiteStoreSaveRecords(t *testing.T) {
	store, err := NewSQLiteStore(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	records := []Record{
		{
			Subject:  "verify",
			Body:     "click http://evil.test",
			URLs:     []string{"http://evil.test"},
			Metadata: Metadata{From: "x@evil.test", Source: "s.csv"},
			Label:    LabelPhishing,
		},
		{
			Subject: "lunch",
			Body:    "noon?",
			Label:   LabelLegitimate,
		},
	}

	ctx := context.Background()
	require.NoError(t, store.SaveRecords(ctx, "train", records))
	require.NoError(t, store.SaveRecords(ctx, "test", records[:1]))

	var trainCount, testCount int
	require.NoError(t, store.db.QueryRow(
		`SELECT COUNT(*) FROM corpus WHERE split = 'train'`).Scan(&trainCount))
	require.NoError(t, store.db.QueryRow(
		`SELECT COUNT(*) FROM corpus WHERE split = 'test'`).Scan(&testCount))
	assert.Equal(t, 2, trainCount)
	assert.Equal(t, 1, testCount)

	var label, urls string
	require.NoError(t, store.db.QueryRow(
		`SELECT label, urls FROM corpus WHERE split = 'train' AND subject = 'verify'`).
		Scan(&label, &urls))
	assert.Equal(t, LabelPhishing, label)
	assert.Equal(t, "http://evil.test", urls)
}
