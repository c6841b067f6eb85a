package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "alice", want: "alice"},
		{name: "bool", in: true, want: true},
		{name: "int64", in: int64(80), want: 80},
		{name: "integral float", in: float64(60), want: 60},
		{name: "fraction", in: 72.5, want: 72.5},
		{name: "json integer", in: json.Number("100"), want: 100},
		{name: "json fraction", in: json.Number("0.25"), want: 0.25},
		{name: "slice", in: []int{1, 2}, want: "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeValue(tt.in))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "80", FormatValue(80))
	assert.Equal(t, "72.5", FormatValue(72.5))
	assert.Equal(t, "x", FormatValue("x"))
}

func TestRecord_String(t *testing.T) {
	r := Record{"username": "alice", "score": 80, "passed": false}
	assert.Equal(t, "alice", r.String("username"))
	assert.Equal(t, "80", r.String("score"))
	assert.Equal(t, "false", r.String("passed"))
	assert.Equal(t, "", r.String("cert_id"))
}

func TestStoreError(t *testing.T) {
	err := NewStoreError("write", CollectionUsers, ErrTransport)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, `write "Users": transport failure`, err.Error())
}
