package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ExpenseRequest_AmountForms(t *testing.T) {
	cases := map[string]AmountInput{
		`{"amount":"1,250.50"}`: "1,250.50",
		`{"amount":50}`:         "50",
		`{"amount":12.75}`:      "12.75",
		`{"amount":null}`:       "",
		`{}`:                    "",
	}
	for body, want := range cases {
		var req ExpenseRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		assert.Equal(t, want, req.Amount, body)
	}

	var req ExpenseRequest
	assert.Error(t, json.Unmarshal([]byte(`{"amount":true}`), &req))
}
