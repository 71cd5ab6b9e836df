package target

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaders_UnmarshalKeepsDocumentOrder(t *testing.T) {
	var hs Headers
	require.NoError(t, json.Unmarshal([]byte(`{"Zeta":"1","Alpha":"2","X-Num":3,"X-Null":null}`), &hs))

	assert.Equal(t, Headers{
		{Name: "Zeta", Value: "1"},
		{Name: "Alpha", Value: "2"},
		{Name: "X-Num", Value: "3"},
		{Name: "X-Null", Value: ""},
	}, hs)
}

func TestHeaders_UnmarshalNullAndInvalid(t *testing.T) {
	var hs Headers
	require.NoError(t, json.Unmarshal([]byte(`null`), &hs))
	assert.Nil(t, hs)

	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &hs))
}

func TestHeaders_MarshalKeepsOrder(t *testing.T) {
	raw, err := json.Marshal(Headers{{Name: "b", Value: "1"}, {Name: "a", Value: `"q"`}})
	require.NoError(t, err)
	assert.Equal(t, `{"b":"1","a":"\"q\""}`, string(raw))
}

func TestFromHTTP_SortsAndJoins(t *testing.T) {
	h := http.Header{}
	h.Add("X-B", "1")
	h.Add("X-A", "2")
	h.Add("X-A", "3")

	assert.Equal(t, Headers{{Name: "X-A", Value: "2, 3"}, {Name: "X-B", Value: "1"}}, FromHTTP(h))
}

func TestHeaders_GetIsCaseInsensitive(t *testing.T) {
	hs := Headers{{Name: "Content-Type", Value: "text/html"}}
	assert.Equal(t, "text/html", hs.Get("content-type"))
	assert.Equal(t, "", hs.Get("missing"))
}
