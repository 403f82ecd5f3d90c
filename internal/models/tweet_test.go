package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	want := time.Date(2018, 10, 10, 20, 19, 24, 0, time.UTC)

	tests := []struct {
		name string
		in   string
	}{
		{"rfc3339", `"2018-10-10T20:19:24Z"`},
		{"twitter archive", `"Wed Oct 10 20:19:24 +0000 2018"`},
		{"epoch number", `1539202764`},
		{"epoch string", `"1539202764"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"not a date"`), &ts))
}

func TestTweetCreate_DecodesOptionalFields(t *testing.T) {
	var in TweetBulkImport
	body := `{"tweets":[{"content":"hello"},{"content":"hi","tweet_id":"42","tweeted_at":null,"metadata":{"likes":3}}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	require.Len(t, in.Tweets, 2)
	assert.Nil(t, in.Tweets[0].TweetID)
	assert.Nil(t, in.Tweets[0].TweetedAt)
	require.NotNil(t, in.Tweets[1].TweetID)
	assert.Equal(t, "42", *in.Tweets[1].TweetID)
	assert.EqualValues(t, 3, in.Tweets[1].Metadata["likes"])
}

func TestTweetHistory_ToResponseNeverNilMetadata(t *testing.T) {
	r := (&TweetHistory{Content: "x"}).ToResponse()
	assert.NotNil(t, r.Metadata)
}
