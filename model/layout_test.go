package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequestID(t *testing.T) {
	testCases := []struct {
		description string
		requestID   string
		valid       bool
	}{
		{description: "uuid", requestID: "0b6c7c2e-3c1e-4c61-9a55-2f0f2b1c9c11", valid: true},
		{description: "sequence", requestID: "r1", valid: true},
		{description: "empty", requestID: ""},
		{description: "dot", requestID: "."},
		{description: "parent", requestID: ".."},
		{description: "parent prefix", requestID: "../other/r1"},
		{description: "nested", requestID: "r1/reviews"},
		{description: "backslash", requestID: `r1\..`},
		{description: "new line", requestID: "r1\n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			err := ValidateRequestID(testCase.requestID)
			if testCase.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidRequestID))
		})
	}
}
