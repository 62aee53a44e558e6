package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_IsDummy(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		value string
		want  bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"ChangeMe", true},
		{"123456", true},
		{"admin", true},
		{"test", true},
		{"sk_test_123", true},
		{"YOUR_API_KEY", true},
		{"placeholder", true},
		{"my-PlaceHolder-value", true},
		{"testing", false},
		{"passwords", false},
		{"", false},
		{"xK9#mP2$vL8@qR5!", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsDummy(tt.value))
		})
	}
}

func TestPolicy_IsSensitive(t *testing.T) {
	p := DefaultPolicy()
	sensitive := []string{"apiKey", "API_KEY", "apikey", "stripe_api_key", "clientSecret", "TOKEN", "dbPassword", "dbPwd", "authHeader", "credentials", "privateKey"}
	for _, name := range sensitive {
		assert.True(t, p.IsSensitive(name), name)
		assert.Equal(t, DefaultSensitiveThreshold, p.Threshold(name), name)
	}
	plain := []string{"greeting", "url", "buildId", "api", "key"}
	for _, name := range plain {
		assert.False(t, p.IsSensitive(name), name)
		assert.Equal(t, DefaultBaseThreshold, p.Threshold(name), name)
	}
}

func TestPolicy_WithDummyValues(t *testing.T) {
	p := DefaultPolicy().WithDummyValues([]string{"Hunter2"})
	assert.True(t, p.IsDummy("hunter2"))
	assert.False(t, p.IsDummy("changeme"))
	// the shared default set is untouched
	assert.True(t, DefaultPolicy().IsDummy("changeme"))
	assert.False(t, DefaultPolicy().IsDummy("hunter2"))
}

func TestPolicy_EmptyPlaceholderMarker(t *testing.T) {
	p := DefaultPolicy()
	p.PlaceholderMarker = ""
	assert.False(t, p.IsDummy("anything"))
}

func TestPolicy_NilSensitiveName(t *testing.T) {
	p := Policy{BaseThreshold: 1, SensitiveThreshold: 0.5}
	assert.False(t, p.IsSensitive("apiKey"))
	assert.Equal(t, 1.0, p.Threshold("apiKey"))
}
