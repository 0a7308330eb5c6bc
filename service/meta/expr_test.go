package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvExpr(t *testing.T) {
	t.Setenv("DR_ZONE", "nlZone")
	t.Setenv("DR_A", "1")
	t.Setenv("DR_B", "2")

	testCases := []struct {
		description string
		input       string
		expect      string
	}{
		{description: "plain", input: "zone: tempZone", expect: "zone: tempZone"},
		{description: "single", input: "zone: ${env.DR_ZONE}", expect: "zone: nlZone"},
		{description: "repeated", input: "${env.DR_A}-${env.DR_B}-${env.DR_A}", expect: "1-2-1"},
		{description: "unset is empty", input: "x=${env.DR_NOT_SET}-end", expect: "x=-end"},
		{description: "empty key", input: "x=${env.}", expect: "x="},
		{description: "missing closing brace", input: "zone: ${env.DR_ZONE", expect: "zone: ${env.DR_ZONE"},
		{description: "invalid key keeps prefix", input: "a ${env.DR_A and ${env.DR_B} b", expect: "a ${env.DR_A and 2 b"},
		{description: "other expressions untouched", input: "${DR_A} $DR_B ${var.x}", expect: "${DR_A} $DR_B ${var.x}"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expect, expandEnvExpr(testCase.input))
		})
	}
}
