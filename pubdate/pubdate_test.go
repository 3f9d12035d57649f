package pubdate

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a Berlin normalizer
func berlin(t *testing.T) *Normalizer {
	n, err := New(DefaultZone)
	require.NoError(t, err)
	return n
}

func TestNormalize(t *testing.T) {
	n := berlin(t)

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"gmt winter", "Tue, 01 Jan 2024 10:00:00 GMT", "2024-01-01 11:00:00"},
		{"numeric offset summer", "Mon, 01 Jul 2024 10:00:00 +0000", "2024-07-01 12:00:00"},
		{"positive offset", "Mon, 01 Jul 2024 14:30:00 +0200", "2024-07-01 14:30:00"},
		{"named us zone", "Wed, 02 Oct 2002 08:00:00 EST", "2002-10-02 15:00:00"},
		{"single digit day", "Fri, 5 Jan 2024 23:30:00 +0000", "2024-01-06 00:30:00"},
		{"no weekday", "01 Jan 2024 10:00:00 +0000", "2024-01-01 11:00:00"},
		{"no seconds", "Tue, 01 Jan 2024 10:00 GMT", "2024-01-01 11:00:00"},
		{"surrounding space", "  Tue, 01 Jan 2024 10:00:00 GMT ", "2024-01-01 11:00:00"},
		{"colon offset", "Tue, 01 Jan 2024 10:00:00 +00:00", "2024-01-01 11:00:00"},
		{"colon offset east", "Mon, 01 Jul 2024 14:30:00 +02:00", "2024-07-01 14:30:00"},
		{"colon offset no weekday", "01 Jan 2024 10:00 -05:00", "2024-01-01 16:00:00"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, n.Normalize(c.raw))
		})
	}
}

// TestNormalize_Fallback verifies unparsable dates lose their last token
func TestNormalize_Fallback(t *testing.T) {
	n := berlin(t)

	assert.Equal(t, "not-a-date", n.Normalize("not-a-date xyz"))
	assert.Equal(t, "Tue, 01 Jan 2024 10:00:00", n.Normalize("Tue, 01 Jan 2024 10:00:00 XYZ"))
	assert.Equal(t, "2024-01-01", n.Normalize("2024-01-01 10:00:00"))
}

// TestNormalize_SingleToken verifies input without a token to drop is
// returned unchanged
func TestNormalize_SingleToken(t *testing.T) {
	n := berlin(t)

	assert.Equal(t, "garbage", n.Normalize("garbage"))
	assert.Equal(t, "2024-01-01T10:00:00Z", n.Normalize("2024-01-01T10:00:00Z"))
	assert.Equal(t, "", n.Normalize(""))
	assert.Equal(t, "   ", n.Normalize("   "))
}

// TestNormalize_Location verifies output follows the configured zone
func TestNormalize_Location(t *testing.T) {
	ny, err := New("America/New_York")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01 05:00:00", ny.Normalize("Tue, 01 Jan 2024 10:00:00 GMT"))

	var zero Normalizer
	assert.Equal(t, "2024-01-01 10:00:00", zero.Normalize("Tue, 01 Jan 2024 10:00:00 GMT"))
}

func TestNew(t *testing.T) {
	n, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultZone, n.Location.String())

	_, err = New("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	got, ok := Parse("Tue, 01 Jan 2024 10:00:00 PST")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)))

	_, ok = Parse("yesterday")
	assert.False(t, ok)
}
