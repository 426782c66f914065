package twitter

import (
	"testing"
	"time"

	"augeo/internal/core/xp"
	"augeo/internal/services/poller/domain"
)

var testUser = domain.UserProfile{
	UserID:   "u-1",
	Username: "kira",
	Handle:   "kirayoshikage",
}

func tweetEvent(t *testing.T, payload string) domain.RawEvent {
	t.Helper()
	return domain.RawEvent{
		ID:        "900001",
		Type:      "tweet",
		Public:    true,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Payload:   []byte(payload),
	}
}

func TestExtractOwnTweet(t *testing.T) {
	t.Parallel()
	p := New(Options{})

	got := p.Extract(tweetEvent(t, `{
		"id_str":"900001","text":"shipping a thing",
		"user":{"screen_name":"KiraYoshikage","name":"Kira"},
		"entities":{"user_mentions":[]}
	}`), testUser)

	if len(got) != 1 {
		t.Fatalf("extracted %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Kind != domain.KindTweet || c.Experience != xp.TweetExperience {
		t.Fatalf("candidate = %+v", c)
	}
	if c.NeedsDetail {
		t.Fatal("tweets must not request enrichment")
	}
}

func TestExtractMention(t *testing.T) {
	t.Parallel()
	p := New(Options{})

	got := p.Extract(tweetEvent(t, `{
		"id_str":"900001","text":"props to @kirayoshikage",
		"user":{"screen_name":"rohan","name":"Rohan"},
		"entities":{"user_mentions":[{"screen_name":"kirayoshikage"}]}
	}`), testUser)

	if len(got) != 1 {
		t.Fatalf("extracted %d candidates, want 1", len(got))
	}
	if got[0].Kind != domain.KindMention || got[0].Experience != xp.MentionExperience {
		t.Fatalf("candidate = %+v", got[0])
	}
}

func TestExtractRetweetOfUser(t *testing.T) {
	t.Parallel()
	p := New(Options{})

	// a retweet mentions the original author, so this must score as a
	// retweet bonus and not fall through to the mention branch
	got := p.Extract(tweetEvent(t, `{
		"id_str":"900001","text":"RT @kirayoshikage: shipping a thing",
		"user":{"screen_name":"rohan","name":"Rohan"},
		"entities":{"user_mentions":[{"screen_name":"kirayoshikage"}]},
		"retweeted_status":{"id_str":"890000","user":{"screen_name":"KiraYoshikage"}}
	}`), testUser)

	if len(got) != 1 {
		t.Fatalf("extracted %d candidates, want 1", len(got))
	}
	if got[0].Kind != domain.KindRetweet || got[0].Experience != xp.RetweetExperience {
		t.Fatalf("candidate = %+v", got[0])
	}
}

func TestExtractRetweetOfSomeoneElse(t *testing.T) {
	t.Parallel()
	p := New(Options{})

	got := p.Extract(tweetEvent(t, `{
		"id_str":"900001","text":"RT @josuke: look at this",
		"user":{"screen_name":"rohan","name":"Rohan"},
		"entities":{"user_mentions":[{"screen_name":"josuke"}]},
		"retweeted_status":{"id_str":"890001","user":{"screen_name":"josuke"}}
	}`), testUser)

	if got != nil {
		t.Fatalf("extracted %d candidates from an unrelated retweet", len(got))
	}
}

func TestExtractUnrelatedTweet(t *testing.T) {
	t.Parallel()
	p := New(Options{})

	got := p.Extract(tweetEvent(t, `{
		"id_str":"900001","text":"talking to @someone_else",
		"user":{"screen_name":"rohan","name":"Rohan"},
		"entities":{"user_mentions":[{"screen_name":"someone_else"}]}
	}`), testUser)

	if got != nil {
		t.Fatalf("extracted %d candidates from an unrelated tweet", len(got))
	}
}

func TestExtractMalformedPayload(t *testing.T) {
	t.Parallel()
	p := New(Options{})

	if got := p.Extract(tweetEvent(t, `{"id_str":`), testUser); got != nil {
		t.Fatalf("malformed payload extracted %d candidates", len(got))
	}
}
