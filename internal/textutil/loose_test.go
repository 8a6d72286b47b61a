package textutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooseString(t *testing.T) {
	testCases := []struct {
		desc   string
		in     string
		expect string
		fail   bool
	}{
		{desc: "string", in: `{"v": "12.5"}`, expect: "12.5"},
		{desc: "integer", in: `{"v": 30}`, expect: "30"},
		{desc: "fraction", in: `{"v": 1.01}`, expect: "1.01"},
		{desc: "trailing zero", in: `{"v": 1.10}`, expect: "1.1"},
		{desc: "exponent", in: `{"v": 2e1}`, expect: "20"},
		{desc: "null", in: `{"v": null}`, expect: "keep"},
		{desc: "absent", in: `{}`, expect: "keep"},
		{desc: "bool", in: `{"v": true}`, fail: true},
		{desc: "array", in: `{"v": [1]}`, fail: true},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			out := struct {
				V LooseString `json:"v"`
			}{V: "keep"}
			err := json.Unmarshal([]byte(tC.in), &out)
			if tC.fail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tC.expect, out.V.String())
		})
	}
}

func TestLooseStringEncodesAsString(t *testing.T) {
	data, err := json.Marshal(struct {
		V LooseString `json:"v"`
	}{V: "5"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v": "5"}`, string(data))
}
