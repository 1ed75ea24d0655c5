package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultOpts = Options{Repair: true, EnvelopeKeys: []string{DefaultEnvelopeKey}}

func TestClassify_Flat(t *testing.T) {
	s := Classify([]byte("  {\"id\":\"1\",\"nodes\":[]}\n"), defaultOpts)
	flat, ok := s.(Flat)
	require.True(t, ok, "got %T", s)
	assert.Nil(t, flat.Fix)
	assert.Equal(t, `{"id":"1","nodes":[]}`, string(flat.Doc))
}

func TestClassify_Envelope(t *testing.T) {
	s := Classify([]byte(`{"workflow": {"id": "7", "nodes": []}, "data": {}}`), defaultOpts)
	env, ok := s.(Envelope)
	require.True(t, ok, "got %T", s)
	assert.Equal(t, "workflow", env.Key)
	assert.Equal(t, `{"id": "7", "nodes": []}`, string(env.Inner))
}

func TestClassify_EnvelopeKeyMustHoldObject(t *testing.T) {
	s := Classify([]byte(`{"workflow": "name", "id": "1", "nodes": []}`), defaultOpts)
	_, ok := s.(Flat)
	assert.True(t, ok, "got %T", s)
}

func TestClassify_ConnectionsObjectIsNotEnvelope(t *testing.T) {
	s := Classify([]byte(`{"id":"1","nodes":[],"connections":{"A":{"main":[]}}}`), defaultOpts)
	_, ok := s.(Flat)
	assert.True(t, ok, "got %T", s)
}

func TestClassify_RepairsTrailingGarbage(t *testing.T) {
	s := Classify([]byte(`{"id":"1","nodes":[]} GARBAGE_SUFFIX`), defaultOpts)
	flat, ok := s.(Flat)
	require.True(t, ok, "got %T", s)
	require.NotNil(t, flat.Fix)
	assert.Equal(t, `{"id":"1","nodes":[]}`, string(flat.Doc))
}

func TestClassify_NoRepairWhenDisabled(t *testing.T) {
	s := Classify([]byte(`{"id":"1"} x`), Options{})
	m, ok := s.(Malformed)
	require.True(t, ok, "got %T", s)
	var pe *ParseError
	assert.True(t, errors.As(m.Err, &pe))
}

func TestClassify_Unrepairable(t *testing.T) {
	s := Classify([]byte(`{"id":"1","nodes":[`), defaultOpts)
	m, ok := s.(Malformed)
	require.True(t, ok, "got %T", s)
	var pe *ParseError
	require.ErrorAs(t, m.Err, &pe)
	assert.False(t, pe.Refused)
}

func TestClassify_StrictRefusesSuspiciousRepair(t *testing.T) {
	text := []byte(`{"id":"1","nodes":[]}, {"id":"2"]`)

	_, ok := Classify(text, defaultOpts).(Flat)
	assert.True(t, ok)

	strict := defaultOpts
	strict.Strict = true
	m, ok := Classify(text, strict).(Malformed)
	require.True(t, ok)
	var pe *ParseError
	require.ErrorAs(t, m.Err, &pe)
	assert.True(t, pe.Refused)
}

func TestClassify_NotObject(t *testing.T) {
	m, ok := Classify([]byte(`[1, 2, 3]`), defaultOpts).(Malformed)
	require.True(t, ok)
	assert.ErrorIs(t, m.Err, ErrNotObject)
}
