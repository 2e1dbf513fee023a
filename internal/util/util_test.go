package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MakeTextList(t *testing.T) {
	testCases := []struct {
		name   string
		items  []string
		expect string
	}{
		{name: "empty", items: nil, expect: ""},
		{name: "one", items: []string{"ID"}, expect: "ID"},
		{name: "two", items: []string{"ID", "NUMBER"}, expect: "ID and NUMBER"},
		{name: "three", items: []string{"ID", "NUMBER", "STRING"}, expect: "ID, NUMBER, and STRING"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// execute
			actual := MakeTextList(tc.items)

			// assert
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func Test_OrderedKeys(t *testing.T) {
	// setup
	m := map[string]int{"c": 1, "a": 2, "b": 3}

	// execute
	keys := OrderedKeys(m)

	// assert
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
