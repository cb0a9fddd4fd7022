package origins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://app.example.com", "https://app.example.com"},
		{"https://app.example.com/", "https://app.example.com"},
		{"  HTTPS://App.Example.COM  ", "https://app.example.com"},
		{"https://app.example.com:443", "https://app.example.com"},
		{"http://app.example.com:80", "http://app.example.com"},
		{"http://localhost:3000", "http://localhost:3000"},
		{"https://app.example.com:8443", "https://app.example.com:8443"},
		{"https://bücher.example", "https://xn--bcher-kva.example"},
		{"http://127.0.0.1:5173", "http://127.0.0.1:5173"},
		{"http://[::1]:8080", "http://[::1]:8080"},
		{"http://[::FFFF:127.0.0.1]:8080", "http://[::ffff:7f00:1]:8080"},
		{"http://[::ffff:7f00:1]:8080", "http://[::ffff:7f00:1]:8080"},
		{"https://[2001:DB8:0:0:0:0:0:1]", "https://[2001:db8::1]"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, in := range []string{
		"app.example.com",
		"ftp://app.example.com",
		"https://app.example.com/api",
		"https://app.example.com?x=1",
		"https://app.example.com#frag",
		"https://user:pw@app.example.com",
		"https://",
		"http://[fe80::1%25en0]:8080",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Normalize(in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid origin")
		})
	}
}

func TestParse_DeduplicatesAndKeepsOrder(t *testing.T) {
	p, err := Parse([]string{
		"https://b.example.com",
		" https://a.example.com/ ",
		"",
		"https://B.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://b.example.com", "https://a.example.com"}, p.List())
	assert.False(t, p.AllowsAll())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err, "empty list must be rejected")

	_, err = Parse([]string{"*", "https://a.example.com"})
	assert.Error(t, err, "wildcard must stand alone")

	_, err = Parse([]string{"https://a.example.com/path"})
	assert.Error(t, err)
}

func TestPolicy_Allows(t *testing.T) {
	p, err := Parse([]string{"https://app.example.com", "http://localhost:3000"})
	require.NoError(t, err)

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://app.example.com", true},
		{"http://localhost:3000", true},
		{"https://APP.example.com", true},
		{"https://app.example.com:443", true},
		{"http://app.example.com", false},
		{"https://evil.example.com", false},
		{"https://app.example.com.evil.com", false},
		{"http://localhost:3001", false},
		{"null", false},
		{"", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Allows(tt.origin))
		})
	}
}

func TestPolicy_Wildcard(t *testing.T) {
	p, err := Parse([]string{"*"})
	require.NoError(t, err)

	assert.True(t, p.AllowsAll())
	assert.True(t, p.Allows("https://anything.example"))
	assert.Equal(t, []string{"*"}, p.List())
}

func TestPolicy_ListIsACopy(t *testing.T) {
	p, err := Parse([]string{"https://a.example.com"})
	require.NoError(t, err)

	l := p.List()
	l[0] = "mutated"
	assert.Equal(t, []string{"https://a.example.com"}, p.List())
}

func TestPolicy_NullOrigin(t *testing.T) {
	p, err := Parse([]string{"https://a.example.com"})
	require.NoError(t, err)
	assert.False(t, p.Allows("null"), "opaque origins are refused unless listed")

	p, err = Parse([]string{"null", "https://a.example.com", "NULL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"null", "https://a.example.com"}, p.List())
	assert.True(t, p.Allows("null"))
	assert.True(t, p.Allows("https://a.example.com"))
	assert.False(t, p.Allows("https://b.example.com"))
}
