package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexFloat_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want FlexFloat
	}{
		{`12`, 12},
		{`"4.5 m"`, 4.5},
		{`null`, 0},
		{`""`, 0},
		{`"1,200"`, 1200},
		{`"1,234,567.5"`, 1234567.5},
		{`"1,200 lineal metres"`, 1200},
		{`"1,5"`, 1.5},
		{`"12,50"`, 12.5},
		{`"-3"`, -3},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var f FlexFloat
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestFlexFloat_RejectsText(t *testing.T) {
	var f FlexFloat
	assert.Error(t, json.Unmarshal([]byte(`"a few"`), &f))
}
