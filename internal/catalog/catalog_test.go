package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/course"
)

const sampleYAML = `
id: k8s-basics
title: Kubernetes Basics
modules:
  - title: Pods
    lessons:
      - title: What is a pod
    quiz:
      - question: Smallest deployable unit?
        options: [container, pod]
        answer: 1
final_project:
  title: Deploy a service
`

func TestBuiltin(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "go-fundamentals", list[0].ID)
	assert.Equal(t, "onboarding", list[1].ID)

	tmpl, err := c.Get("go-fundamentals")
	require.NoError(t, err)
	assert.Len(t, tmpl.Modules, 3)
	require.NotNil(t, tmpl.FinalProject)
	assert.NotEmpty(t, tmpl.FinalProject.Criteria)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k8s.yaml"), []byte(sampleYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	c := New()
	require.NoError(t, c.LoadDir(dir))

	tmpl, err := c.Get("k8s-basics")
	require.NoError(t, err)
	assert.Equal(t, "Kubernetes Basics", tmpl.Title)
	assert.Equal(t, 1, tmpl.Modules[0].Quiz[0].Answer)
}

func TestLoadRejectsInvalidTemplates(t *testing.T) {
	tests := map[string]string{
		"unknown field": "id: x\ntitle: X\nbogus: 1\nmodules:\n  - title: M\n    lessons: [{title: L}]\n",
		"no modules":    "id: x\ntitle: X\nmodules: []\n",
		"answer range":  "id: x\ntitle: X\nmodules:\n  - title: M\n    lessons: [{title: L}]\n    quiz:\n      - question: Q\n        options: [a, b]\n        answer: 5\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
			assert.Error(t, New().LoadFile(path))
		})
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := New().Get("nope")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestMarshalParse(t *testing.T) {
	tmpl, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	out, err := Marshal(tmpl)
	require.NoError(t, err)
	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, tmpl.ID, again.ID)
	assert.Equal(t, tmpl.Modules[0].Quiz, again.Modules[0].Quiz)
	assert.Equal(t, tmpl.FinalProject.Title, again.FinalProject.Title)

	assert.ErrorIs(t, New().Add(&course.Template{ID: "x"}), course.ErrInvalidInput)
}
