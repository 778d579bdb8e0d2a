package canon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"sorted keys", `{"b": 1, "a": {"d": true, "c": false}}`, `{"a":{"c":false,"d":true},"b":1}`},
		{"whitespace", "[ 1 ,\n 2 ]", `[1,2]`},
		{"negative zero", `[-0, 10]`, `[0,10]`},
		{"html not escaped", `{"s": "<a&b>"}`, `{"s":"<a&b>"}`},
		{"line separators literal", `"\u2028\u2029"`, "\"\u2028\u2029\""},
		{"control characters", `"\u0001\n\t"`, `"\u0001\n\t"`},
		{"quote and backslash", `"a\"b\\c"`, `"a\"b\\c"`},
		{"nfc", `"Cafe\u0301"`, "\"Caf\u00e9\""},
		{"empty containers", `{"a": [], "b": {}}`, `{"a":[],"b":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromJSON([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestFromJSON_Rejects(t *testing.T) {
	_, err := FromJSON([]byte(`{"a": null}`))
	assert.ErrorIs(t, err, ErrNull)

	_, err = FromJSON([]byte(`[1.5]`))
	assert.ErrorIs(t, err, ErrFloat)

	_, err = FromJSON([]byte(`[1e2]`))
	assert.ErrorIs(t, err, ErrFloat)

	_, err = FromJSON([]byte(`{"a": `))
	assert.Error(t, err)

	_, err = Marshal(3.0)
	assert.ErrorIs(t, err, ErrFloat)

	_, err = Marshal(struct{}{})
	assert.Error(t, err)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	m := map[string]int{
		"\ufb01":     1, // one UTF-16 unit, 0xFB01
		"\U0001F600": 2, // surrogate pair starting 0xD83D
		"z":          3,
	}
	// Byte order would put U+FB01 before the emoji.
	assert.Equal(t, []string{"z", "\U0001F600", "\ufb01"}, SortedKeys(m))

	got, err := Marshal(map[string]any{"\ufb01": 1, "\U0001F600": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\ufb01\":1}", string(got))
}

func TestMarshalValue(t *testing.T) {
	type rec struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Tags  []string `json:"tags,omitempty"`
	}
	got, err := MarshalValue(rec{Name: "x", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"count":2,"name":"x"}`, string(got))

	_, err = MarshalValue(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)

	_, err = MarshalValue(struct {
		P *int `json:"p"`
	}{})
	assert.ErrorIs(t, err, ErrNull)

	var raw json.RawMessage = []byte(`{"z":1,"a":2}`)
	got, err = MarshalValue(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"z":1}`, string(got))
}

func TestHash(t *testing.T) {
	assert.Equal(t,
		"ebcde0b01ae241d662503ee0555a2c95901c481dc2623dfc5f58115643e3b54c",
		Hash(DomainDocument, []byte("{}")))

	assert.Equal(t, "59b271ae1bbcb1d31d41929817f4b16fb439eb4f31520b5ad1d5ce98920a7138", Hash("a", []byte("b")))
	assert.NotEqual(t, Hash("ab", nil), Hash("a", []byte("b")))
}
