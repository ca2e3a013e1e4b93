package logx

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "192.168.10.42:5555", want: "192.168.10.0"},
		{in: "10.1.2.3", want: "10.1.2.0"},
		{in: "127.0.0.1:80", want: "127.0.0.1"},
		{in: "[2001:db8:1:2:3:4:5:6]:443", want: "2001:db8:1:2::"},
		{in: "not-an-ip", want: "unknown_ip"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, anonymizeIP(tc.in), tc.in)
	}
}

func TestHelpers_WriteFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("hello", "user_id", "user_abc")
	Error(errors.New("boom"), "failed", "key", "chatAccess_user_abc")

	out := buf.String()
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"user_id":"user_abc"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"key":"chatAccess_user_abc"`)
}

func TestHelpers_OddFieldsAreDropped(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("odd", "lonely")

	out := buf.String()
	assert.Contains(t, out, "odd number of fields")
	assert.NotContains(t, out, `"lonely"`)
}

func TestComponent_TagsLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	l := Component("feed")
	l.Info().Msg("polled")

	assert.Contains(t, buf.String(), `"component":"feed"`)
}
