package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "api/a.thrift", expected: "/api/a.thrift"},
		{input: "/api/../b.proto", expected: "/b.proto"},
		{input: "file:///idl/c.thrift", expected: "/idl/c.thrift"},
		{input: "https://example.com/d.proto", expected: "https://example.com/d.proto"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, Normalize(testCase.input))
		})
	}
}

func TestRelative(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "base.thrift", expected: "./base.thrift"},
		{input: "./base.thrift", expected: "./base.thrift"},
		{input: "common/base.thrift", expected: "./common/base.thrift"},
		{input: "../shared/base.thrift", expected: "../shared/base.thrift"},
		{input: "/abs/base.thrift", expected: "/abs/base.thrift"},
		{input: ".//x.proto", expected: "./x.proto"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, Relative(testCase.input))
		})
	}
}
