package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idkjsp/Lacale-check/internal/testutil"
)

func TestService_Scan(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "Movies/The Matrix (1999)/The.Matrix.1080p.BluRay.mkv", "x")
	testutil.WriteFile(t, root, "Movies/The Matrix (1999)/sample.mkv", "x")
	testutil.WriteFile(t, root, "Movies/Dune.2021.2160p.WEB-DL.mp4", "x")
	testutil.WriteFile(t, root, "Movies/Dune.2021.2160p.WEB-DL.nfo", "x")
	testutil.WriteFile(t, root, "TV/Severance/Severance.S01E01.1080p.WEB.mkv", "x")
	testutil.WriteFile(t, root, "TV/Severance/Severance.S01E02.1080p.WEB.mkv", "x")

	logger := zerolog.Nop()
	svc := NewService(&logger)

	result, err := svc.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalFiles)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Movies, 2)
	require.Len(t, result.Episodes, 2)

	// WalkDir visits in lexical order
	assert.Equal(t, "Dune", result.Movies[0].Title)
	assert.Equal(t, 2021, result.Movies[0].Year)
	assert.Equal(t, "The Matrix", result.Movies[1].Title)
	assert.Equal(t, 1999, result.Movies[1].Year)
	assert.Equal(t, 1, result.Episodes[0].Episode)
	assert.Equal(t, 2, result.Episodes[1].Episode)
}

func TestService_Scan_MissingRoot(t *testing.T) {
	logger := zerolog.Nop()
	svc := NewService(&logger)

	_, err := svc.Scan(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestService_Scan_Canceled(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "a/Movie.2020.mkv", "x")

	logger := zerolog.Nop()
	svc := NewService(&logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
