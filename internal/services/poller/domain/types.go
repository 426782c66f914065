package domain

import "time"

// Provider identifies an upstream activity feed
type Provider string

// Supported providers
const (
	ProviderGitHub  Provider = "github"
	ProviderTwitter Provider = "twitter"
)

// Activity kinds emitted by the extractors
const (
	KindCommit  = "commit"
	KindTweet   = "tweet"
	KindMention = "mention"
	KindRetweet = "retweet"
)

// UserProfile is the registered identity a feed is polled for.
// FirstName, LastName and Email drive commit attribution; Handle is the
// provider-side login or screen name
type UserProfile struct {
	UserID    string
	Username  string
	FirstName string
	LastName  string
	Email     string
	Handle    string
}

// Auth carries the per user provider credentials. Secret is only set
// for providers that sign requests with a token pair
type Auth struct {
	Token  string
	Secret string
}

// PollState is the persisted cursor for one (user, provider) feed.
// The zero value means "never polled": fetch from the feed root with no
// conditional header and accept everything
type PollState struct {
	// CursorPath resumes pagination mid feed; empty means the feed root
	CursorPath string

	// ETag is sent as If-None-Match on the first page of the next poll
	ETag string

	// LastEventID is the newest event id ever emitted; events at or
	// below it are already processed
	LastEventID int64

	// ResumeMark is the dedup boundary for a resumed walk. While
	// CursorPath is set, LastEventID already holds ids from the capped
	// cycle's shallow pages, so the deeper pages dedup against this
	// older mark instead. Zero whenever CursorPath is empty
	ResumeMark int64

	// NextPollAt is when the scheduler should poll again
	NextPollAt time.Time
}

// PageMeta is the response metadata of one feed page fetch
type PageMeta struct {
	Status        int
	ETag          string
	PollInterval  time.Duration // provider requested cadence, 0 when absent
	RateReset     int64         // rate window reset, epoch seconds
	RateRemaining int
	RatePresent   bool   // false when the provider omitted rate headers
	Link          string // raw Link header for pagination
}

// RawEvent is one feed entry in provider wire shape, newest first.
// Payload stays opaque until the provider's extractor reads it
type RawEvent struct {
	ID        string
	Type      string
	Public    bool
	Repo      string
	CreatedAt time.Time
	Payload   []byte
}

// Candidate is an attributed unit of work cut from a raw event, before
// enrichment. DetailRef points the provider at the detail document when
// NeedsDetail is set
type Candidate struct {
	Provider    Provider
	EventID     string
	Kind        string
	Skill       string
	Text        string
	AuthorName  string
	Repo        string
	DetailRef   string
	Experience  int
	NeedsDetail bool
	CreatedAt   time.Time
}

// Detail is the enrichment payload for one candidate
type Detail struct {
	Additions int
	Deletions int
}

// Activity is a fully scored unit of user activity, ready to persist
type Activity struct {
	ID         string
	UserID     string
	Provider   Provider
	EventID    string
	Kind       string
	Skill      string
	Text       string
	AuthorName string
	Repo       string
	Additions  int
	Deletions  int
	Experience int
	CreatedAt  time.Time
}

// PollResult is the outcome of one poll cycle. State is the advanced
// cursor to persist; NextWait is the advisory delay before the next
// poll of the same feed
type PollResult struct {
	Activities []Activity
	State      PollState
	NextWait   time.Duration
}

// RemoteProfile is the provider-side public profile of a user
type RemoteProfile struct {
	Handle     string
	Name       string
	AvatarURL  string
	ProfileURL string
}

// Subscription joins a user, a provider and its poll state for the
// scheduler. Attempts counts consecutive failed polls
type Subscription struct {
	UserID   string
	Provider Provider
	User     UserProfile
	Auth     Auth
	State    PollState
	Attempts int
}
