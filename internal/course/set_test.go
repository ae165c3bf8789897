package course

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AddIsIdempotent(t *testing.T) {
	var s Set
	assert.True(t, s.Add("m0_l0"))
	assert.False(t, s.Add("m0_l0"))
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has("m0_l0"))
	assert.False(t, s.Has("m0_l1"))
}

func TestSet_EncodesAsTaggedArray(t *testing.T) {
	s := NewSet("m1_l0", "m0_l0", "m0_l0")

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"$set":["m0_l0","m1_l0"]}`, string(raw))

	var back Set
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s, back)
}

func TestSet_DecodeForms(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "tagged", in: `{"$set":["a","b"]}`, want: []string{"a", "b"}},
		{name: "plain array", in: `["b","a","b"]`, want: []string{"a", "b"}},
		{name: "null", in: `null`, want: []string{}},
		{name: "empty tagged", in: `{"$set":[]}`, want: []string{}},
		{name: "untagged object", in: `{"items":["a"]}`, wantErr: true},
		{name: "wrong member type", in: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Set
			err := json.Unmarshal([]byte(tt.in), &s)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Sorted())
		})
	}
}

func TestSet_CloneIsIndependent(t *testing.T) {
	s := NewSet("a")
	c := s.Clone()
	c.Add("b")
	assert.False(t, s.Has("b"))

	var nilSet Set
	assert.NotNil(t, nilSet.Clone())
}
