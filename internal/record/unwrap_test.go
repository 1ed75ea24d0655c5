package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrap_KeepsInnerContent(t *testing.T) {
	in := `{"workflow": {"id": "7", "nodes": [{"name":"a","type":"t","position":[0,0]}]}}`
	env, ok := Classify([]byte(in), defaultOpts).(Envelope)
	require.True(t, ok)

	flat, err := env.Unwrap()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "7", "nodes": [{"name":"a","type":"t","position":[0,0]}]}`, string(flat.Doc))
	assert.Equal(t, `{"id": "7", "nodes": [{"name":"a","type":"t","position":[0,0]}]}`, string(flat.Doc))
}

func TestUnwrap_InnerWithoutNodes(t *testing.T) {
	env, ok := Classify([]byte(`{"workflow": {"id": "7"}}`), defaultOpts).(Envelope)
	require.True(t, ok)

	_, err := env.Unwrap()
	assert.ErrorIs(t, err, ErrInnerInvalid)
}

func TestUnwrap_InnerNodesNotArray(t *testing.T) {
	env, ok := Classify([]byte(`{"workflow": {"id": "7", "nodes": "x"}}`), defaultOpts).(Envelope)
	require.True(t, ok)

	_, err := env.Unwrap()
	assert.ErrorIs(t, err, ErrInnerInvalid)
}
