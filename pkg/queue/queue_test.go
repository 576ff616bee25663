package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runPayload struct {
	RunID   string   `json:"run_id"`
	Symbols []string `json:"symbols"`
}

func TestParsePayload(t *testing.T) {
	want := runPayload{RunID: "r1", Symbols: []string{"SPY"}}

	tests := []struct {
		name    string
		payload interface{}
		wantErr bool
	}{
		{name: "raw message", payload: json.RawMessage(`{"run_id":"r1","symbols":["SPY"]}`)},
		{name: "bytes", payload: []byte(`{"run_id":"r1","symbols":["SPY"]}`)},
		{name: "value", payload: want},
		{name: "pointer", payload: &want},
		{name: "decoded map", payload: map[string]interface{}{"run_id": "r1", "symbols": []interface{}{"SPY"}}},
		{name: "bad json", payload: json.RawMessage(`{`), wantErr: true},
		{name: "unsupported", payload: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload[runPayload](tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, *got)
		})
	}
}

func TestNewRedisQueue_Defaults(t *testing.T) {
	q := NewRedisQueue(nil, Config{}, WithPrefix("test:q"))
	assert.Equal(t, 1, q.cfg.Workers)
	assert.Equal(t, "test:q:retry", q.key("retry"))

	q = NewRedisQueue(nil, Config{}, WithPrefix(""))
	assert.Equal(t, defaultPrefix+":messages", q.key("messages"))
}
