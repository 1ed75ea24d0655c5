package record

import (
	"regexp"
	"testing"

	"github.com/agentic-research/flowmend/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromFilename_NumericPrefix(t *testing.T) {
	assert.Equal(t, "42", IDFromFilename("42_example.json"))
	assert.Equal(t, "10001", IDFromFilename("10001_Download_TikTok_Videos.json"))
}

func TestIDFromFilename_Sanitized(t *testing.T) {
	id := IDFromFilename("My Workflow!!.json")
	assert.Equal(t, "My_Workflow__", id)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_]+$`), id)
	assert.LessOrEqual(t, len(id), 20)

	// deterministic
	assert.Equal(t, id, IDFromFilename("My Workflow!!.json"))
}

func TestIDFromFilename_Truncated(t *testing.T) {
	id := IDFromFilename("OpenAI-powered tweet generator.json")
	assert.Equal(t, "OpenAI_powered_tweet", id)
	assert.Len(t, id, 20)
}

func TestIDFromFilename_NonASCII(t *testing.T) {
	id := IDFromFilename("工作流 1.json")
	assert.Equal(t, "____1", id)
}

func TestIDFromFilename_EmptyStem(t *testing.T) {
	assert.Equal(t, "workflow", IDFromFilename(".json"))
}

func TestHasID(t *testing.T) {
	assert.True(t, HasID([]byte(`{"id":"a"}`)))
	assert.True(t, HasID([]byte(`{"id":12}`)))
	assert.False(t, HasID([]byte(`{}`)))
	assert.False(t, HasID([]byte(`{"id":null}`)))
	assert.False(t, HasID([]byte(`{"id":""}`)))
	assert.False(t, HasID([]byte(`{"id":0}`)))
	assert.False(t, HasID([]byte(`{"id":false}`)))
}

func TestNormalize_FillsMissingID(t *testing.T) {
	f, actions, err := Normalize(Flat{Doc: []byte(`{"name":"x","nodes":[]}`)}, "42_example.json")
	require.NoError(t, err)
	assert.Equal(t, []api.Action{api.ActionAddedID}, actions)
	assert.Equal(t, "42", ID(f.Doc))
	assert.JSONEq(t, `{"name":"x","nodes":[],"id":"42"}`, string(f.Doc))
}

func TestNormalize_DefaultsNodes(t *testing.T) {
	for _, doc := range []string{
		`{"id":"1"}`,
		`{"id":"1","nodes":"oops"}`,
		`{"id":"1","nodes":{"a":1}}`,
		`{"id":"1","nodes":null}`,
	} {
		f, actions, err := Normalize(Flat{Doc: []byte(doc)}, "1_x.json")
		require.NoError(t, err, doc)
		assert.Equal(t, []api.Action{api.ActionAddedNodes}, actions, doc)
		assert.JSONEq(t, `{"id":"1","nodes":[]}`, string(f.Doc), doc)
	}
}

func TestNormalize_CompleteRecordUntouched(t *testing.T) {
	in := []byte(`{"id":"1","nodes":[{"name":"a"}],"connections":{}}`)
	f, actions, err := Normalize(Flat{Doc: in}, "whatever.json")
	require.NoError(t, err)
	assert.Empty(t, actions)
	assert.Equal(t, string(in), string(f.Doc))
}

func TestNormalize_PreservesKeyOrder(t *testing.T) {
	f, _, err := Normalize(Flat{Doc: []byte(`{"name":"x","active":false,"nodes":"bad"}`)}, "7_x.json")
	require.NoError(t, err)
	assert.Regexp(t, `^\{"name":"x","active":false,"nodes":\[\],"id":"7"\}$`, string(f.Doc))
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := []byte(`{"nodes":[]}`)
	_, _, err := Normalize(Flat{Doc: in}, "3_x.json")
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[]}`, string(in))
}
