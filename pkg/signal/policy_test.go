package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input    string
		expected Policy
		wantErr  bool
	}{
		{"ignore_all", PolicyIgnoreAll, false},
		{"IGNORE", PolicyIgnoreAll, false},
		{"fire_signal", PolicyFireSignal, false},
		{" fire ", PolicyFireSignal, false},
		{"store_in_queue", PolicyStoreInQueue, false},
		{"queue", PolicyStoreInQueue, false},
		{"broadcast", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsInvalidPolicyError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPolicy_StringAndValid(t *testing.T) {
	for _, p := range []Policy{PolicyIgnoreAll, PolicyFireSignal, PolicyStoreInQueue} {
		assert.True(t, p.Valid())
		parsed, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	assert.False(t, Policy(3).Valid())
	assert.Equal(t, "unknown", Policy(3).String())
}

func TestBasic_ValuesAreCopied(t *testing.T) {
	values := []any{"a", 1}
	s := New("unit", "evt", values...)
	values[0] = "mutated"

	assert.Equal(t, []any{"a", 1}, s.Values())
	s.Values()[1] = 2
	assert.Equal(t, 1, s.Value(1))
	assert.Nil(t, s.Value(5))
	assert.Equal(t, "unit", s.Source())
	assert.Contains(t, s.String(), "name=evt")
}
