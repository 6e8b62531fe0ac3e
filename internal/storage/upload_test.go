package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_ReportsProgress(t *testing.T) {
	d := newTestDiskStore(t)
	body := bytes.Repeat([]byte("a"), 100_000)
	p := "events/e1/budgets/u1/1-big.pdf"

	var reports []Progress
	task := Upload(context.Background(), d, p, bytes.NewReader(body), int64(len(body)), func(pr Progress) {
		reports = append(reports, pr)
	})
	url, err := task.Wait()
	require.NoError(t, err)
	assert.Equal(t, d.URL(p), url)
	assert.Equal(t, p, task.Path())

	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.Equal(t, 100.0, last.Percent)
	assert.Equal(t, url, last.DownloadURL)
	assert.Equal(t, int64(len(body)), last.BytesTransferred)
	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i].Percent, reports[i-1].Percent)
	}

	stored, err := os.ReadFile(filepath.Join(d.Root(), filepath.FromSlash(p)))
	require.NoError(t, err)
	assert.Equal(t, body, stored)

	// Cancel after completion is harmless
	task.Cancel()
	task.Cancel()
}

func TestUpload_Cancel(t *testing.T) {
	d := newTestDiskStore(t)
	p := "events/e1/budgets/u1/1-slow.pdf"
	pr, pw := io.Pipe()

	var last Progress
	task := Upload(context.Background(), d, p, pr, 1000, func(p Progress) { last = p })

	_, err := pw.Write(bytes.Repeat([]byte("x"), 100))
	require.NoError(t, err)
	task.Cancel()
	require.NoError(t, pw.Close())

	url, err := task.Wait()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, url)
	assert.ErrorIs(t, last.Err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(d.Root(), filepath.FromSlash(p)))
	assert.True(t, os.IsNotExist(statErr))
	entries, err := os.ReadDir(filepath.Join(d.Root(), "events", "e1", "budgets", "u1"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_CancelKeepsExistingObject(t *testing.T) {
	d := newTestDiskStore(t)
	ctx := context.Background()
	p := "events/e1/budgets/u1/1-quote.pdf"
	_, err := d.Put(ctx, p, bytes.NewReader([]byte("first upload")))
	require.NoError(t, err)

	// A second upload to the same path is cancelled midway
	pr, pw := io.Pipe()
	task := Upload(ctx, d, p, pr, 1000, nil)
	_, err = pw.Write([]byte("second"))
	require.NoError(t, err)
	task.Cancel()
	require.NoError(t, pw.Close())
	_, err = task.Wait()
	require.ErrorIs(t, err, context.Canceled)

	stored, err := os.ReadFile(filepath.Join(d.Root(), filepath.FromSlash(p)))
	require.NoError(t, err)
	assert.Equal(t, "first upload", string(stored))
}

func TestUpload_NilProgress(t *testing.T) {
	d := newTestDiskStore(t)
	task := Upload(context.Background(), d, "a/b.pdf", bytes.NewReader([]byte("x")), 1, nil)
	_, err := task.Wait()
	assert.NoError(t, err)
}
