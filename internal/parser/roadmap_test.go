package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acheong08/neuromap/internal/hierarchy"
)

const validRoadmap = `{"nodes":[
	{"id":"root","label":"Start Here","description":"Begin","category":"foundation","complexity":"beginner"},
	{"id":"python","parentId":"root","label":"Python","description":"Basics","category":"foundation","complexity":"beginner"},
	{"id":"evals","parentId":"ghost","label":"Evals","description":"Measure","category":"advanced","complexity":"advanced"}
]}`

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, RoadmapFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseRoadmapFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), validRoadmap)

	roadmap, err := ParseRoadmapFile(path)
	require.NoError(t, err)
	require.Len(t, roadmap.Nodes, 3)
	assert.Equal(t, "python", roadmap.Nodes[1].ID)
}

func TestParseRoadmapFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseRoadmapFile(filepath.Join(dir, "absent.json"))
	assert.ErrorContains(t, err, "failed to read roadmap")

	path := writeFile(t, dir, `{"nodes":[{"id":"root","label":"R","category":"cooking","complexity":"beginner"}]}`)
	_, err = ParseRoadmapFile(path)
	assert.ErrorContains(t, err, "cooking")
}

func TestLoadTreeRepairs(t *testing.T) {
	path := writeFile(t, t.TempDir(), validRoadmap)

	root, stats, err := LoadTree(path)
	require.NoError(t, err)
	assert.Equal(t, 3, root.Size())
	assert.Equal(t, []string{"evals"}, stats.Repaired)
	assert.Equal(t, "root", root.Find("evals").Parent().ID)
}

func TestValidateRoadmapFile(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorContains(t, ValidateRoadmapFile(filepath.Join(dir, RoadmapFileName)), "roadmap not found")

	path := writeFile(t, dir, `{"nodes":[{"id":"a","label":"A","category":"foundation","complexity":"beginner"}]}`)
	err := ValidateRoadmapFile(path)
	assert.True(t, errors.Is(err, hierarchy.ErrMalformedHierarchy))

	writeFile(t, dir, validRoadmap)
	assert.NoError(t, ValidateRoadmapFile(path))
}

func TestFindRoadmapFile(t *testing.T) {
	dir := t.TempDir()
	_, err := FindRoadmapFile(dir)
	assert.Error(t, err)

	want := writeFile(t, dir, validRoadmap)
	got, err := FindRoadmapFile(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ResolveRoadmapFile("explicit.json")
	require.NoError(t, err)
	assert.Equal(t, "explicit.json", got)
}
