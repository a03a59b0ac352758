package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semaeis/decoder"
	_ "github.com/c360studio/semaeis/grammar"
	"github.com/c360studio/semaeis/source/extract"
)

func writeExtract(t *testing.T, root, year, name, content string) {
	t.Helper()
	path := filepath.Join(root, year, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAnalyzeFile(t *testing.T) {
	root := t.TempDir()
	writeExtract(t, root, "1994", "campothr.dat", "CAMPUS,CA0ZZ94,CA0EQ94R\n001902001,1,88.5\n")

	f, err := extract.NewFile(filepath.Join(root, "1994", "campothr.dat"))
	require.NoError(t, err)

	res, err := New(Options{}).AnalyzeFile(context.Background(), f, nil)
	require.NoError(t, err)
	require.Len(t, res.Columns, 3)

	assert.Equal(t, "CA0EQ94R", res.Columns[0].Code)
	assert.Equal(t, "CA0ZZ94", res.Columns[1].Code)
	assert.Equal(t, "CAMPUS", res.Columns[2].Code)

	records := res.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "campus", records[0].Record.Facts["level"])
	assert.Equal(t, "othr", records[0].Record.Kind)
	assert.Equal(t, 1994, records[0].Record.Year)

	failures := res.Failures()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0].Err, decoder.ErrUnparsedRemainder)
}

func TestAnalyzeFileFailFast(t *testing.T) {
	root := t.TempDir()
	writeExtract(t, root, "1994", "campothr.dat", "CA0ZZ94\n1\n")

	f, err := extract.NewFile(filepath.Join(root, "1994", "campothr.dat"))
	require.NoError(t, err)

	a := New(Options{Batch: decoder.BatchOptions{Workers: 1, FailFast: true}})
	_, err = a.AnalyzeFile(context.Background(), f, nil)
	assert.ErrorIs(t, err, decoder.ErrUnparsedRemainder)
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	writeExtract(t, root, "1994", "campothr.dat", "CAMPUS,CA0EQ94R\n001902001,88.5\n")
	writeExtract(t, root, "1994", "campfoo.dat", "CAMPUS,CAXYZ\n001902001,1\n")
	writeExtract(t, root, "1995", "distothr.dat", "DISTRICT,DA0EQ95R\n001902,90.0\n")

	files, err := extract.Discover(root)
	require.NoError(t, err)
	require.Len(t, files, 3)

	var seen []string
	err = New(Options{}).Run(context.Background(), root, files, func(res *FileResult) error {
		seen = append(seen, res.File.String())
		assert.Empty(t, res.Failures())
		return nil
	})
	require.NoError(t, err)

	// campfoo has no grammar and is skipped.
	assert.Equal(t, []string{"<1994 campothr>", "<1995 distothr>"}, seen)
}

func TestRunFailFast(t *testing.T) {
	root := t.TempDir()
	writeExtract(t, root, "1994", "campothr.dat", "CA0ZZ94\n1\n")
	writeExtract(t, root, "1995", "campothr.dat", "CA0EQ95R\n1\n")

	files, err := extract.Discover(root)
	require.NoError(t, err)

	calls := 0
	err = New(Options{Batch: decoder.BatchOptions{FailFast: true}}).Run(context.Background(), root, files, func(*FileResult) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, decoder.ErrUnparsedRemainder)
	assert.Equal(t, 1, calls)
}

func TestRunCancelled(t *testing.T) {
	root := t.TempDir()
	writeExtract(t, root, "1994", "campothr.dat", "CA0EQ94R\n1\n")
	files, err := extract.Discover(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = New(Options{}).Run(ctx, root, files, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
