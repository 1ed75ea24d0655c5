package linter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importable = `{
  "id": "599",
  "name": "Image watermark",
  "nodes": [
    {"name": "Start", "type": "n8n-nodes-base.manualTrigger", "position": [250, 300]},
    {"name": "Watermark", "type": "n8n-nodes-base.editImage", "position": [450.5, 300]}
  ],
  "connections": {
    "Start": {"main": [[{"node": "Watermark", "type": "main", "index": 0}]]}
  }
}`

func TestCheckImport_Pass(t *testing.T) {
	r := CheckImportBytes([]byte(importable))
	assert.True(t, r.Pass, r.Violation)
	assert.Empty(t, r.Violation)
	assert.Equal(t, 2, r.Nodes)
	assert.Empty(t, r.Diagnostics)
}

func TestCheckImport_NodeMissingType(t *testing.T) {
	// The repair pass accepts this record; the import check does not.
	r := CheckImportBytes([]byte(`{"id":"1","nodes":[{"name":"a","position":[0,0]}]}`))
	assert.False(t, r.Pass)
	assert.Contains(t, r.Violation, `"type"`)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, Warn, r.Diagnostics[0].Level)
}

func TestCheckImport_NodeMissingName(t *testing.T) {
	r := CheckImportBytes([]byte(`{"id":"1","nodes":[{"type":"t","position":[0,0]}]}`))
	assert.False(t, r.Pass)
	assert.Equal(t, `node 0 missing required field "name"`, r.Violation)
}

func TestCheckImport_BadPosition(t *testing.T) {
	for _, pos := range []string{`[0]`, `[0,0,0]`, `"0,0"`, `["a","b"]`} {
		r := CheckImportBytes([]byte(`{"id":"1","nodes":[{"name":"a","type":"t","position":` + pos + `}]}`))
		assert.False(t, r.Pass, pos)
		assert.Contains(t, r.Violation, "position", pos)
	}
}

func TestCheckImport_IDMustBeString(t *testing.T) {
	r := CheckImportBytes([]byte(`{"id":12,"nodes":[{"name":"a","type":"t","position":[0,0]}]}`))
	assert.False(t, r.Pass)
	assert.Contains(t, r.Violation, "workflow id")
}

func TestCheckImport_EmptyNodes(t *testing.T) {
	r := CheckImportBytes([]byte(`{"id":"1","nodes":[]}`))
	assert.False(t, r.Pass)
	assert.Equal(t, "invalid or empty nodes array", r.Violation)
}

func TestCheckImport_ConnectionWithoutMain(t *testing.T) {
	r := CheckImportBytes([]byte(`{"id":"1","nodes":[{"name":"a","type":"t","position":[0,0]}],"connections":{"a":{"other":[]}}}`))
	assert.False(t, r.Pass)
	assert.Contains(t, r.Violation, `"main"`)
}

func TestCheckImport_NoConnectionsIsInfo(t *testing.T) {
	r := CheckImportBytes([]byte(`{"id":"1","nodes":[{"name":"a","type":"t","position":[0,0]}]}`))
	assert.True(t, r.Pass)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, Info, r.Diagnostics[0].Level)
}

func TestCheckImport_InvalidJSON(t *testing.T) {
	r := CheckImportBytes([]byte(`{"id":`))
	assert.False(t, r.Pass)
	assert.Contains(t, r.Violation, "invalid JSON")
}

func TestIncompleteNodes(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{"name": "a", "type": "t", "position": []any{int64(0), int64(0)}},
			map[string]any{"name": "b"},
			"junk",
		},
	}
	incomplete, total := IncompleteNodes(doc)
	assert.Equal(t, 2, incomplete)
	assert.Equal(t, 3, total)
}
