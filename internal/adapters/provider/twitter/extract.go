package twitter

import (
	json "encoding/json/v2"

	"augeo/internal/core/identity"
	"augeo/internal/core/xp"
	"augeo/internal/services/poller/domain"
)

// skillName is the skill tweets and mentions accrue experience under
const skillName = "Twitter"

// Extract cuts a candidate from one timeline entry. The user's own
// tweets score as tweets; retweets of the user's tweets earn the
// author a retweet bonus; other tweets that mention the user's handle
// score as mentions. Anything else is dropped quietly
func (p *Provider) Extract(ev domain.RawEvent, user domain.UserProfile) []domain.Candidate {
	var tw wireTweet
	if err := json.Unmarshal(ev.Payload, &tw); err != nil {
		p.c.log.Debug().Str("event_id", ev.ID).Msg("twitter payload decode failed")
		return nil
	}

	c := domain.Candidate{
		Provider:   domain.ProviderTwitter,
		EventID:    ev.ID,
		Skill:      skillName,
		Text:       tw.Text,
		AuthorName: tw.User.ScreenName,
		CreatedAt:  ev.CreatedAt,
	}

	// a retweet carries the original author as a mention, so it must
	// classify before the mention branch
	switch {
	case identity.Fold(tw.User.ScreenName) == identity.Fold(user.Handle):
		c.Kind = domain.KindTweet
		c.Experience = xp.TweetExperience
	case retweetsUser(tw, user.Handle):
		c.Kind = domain.KindRetweet
		c.Experience = xp.RetweetExperience
	case mentionsHandle(tw, user.Handle):
		c.Kind = domain.KindMention
		c.Experience = xp.MentionExperience
	default:
		return nil
	}
	return []domain.Candidate{c}
}

// retweetsUser reports whether tw is someone else's retweet of one of
// the user's tweets
func retweetsUser(tw wireTweet, handle string) bool {
	if tw.RetweetedStatus == nil {
		return false
	}
	return identity.Fold(tw.RetweetedStatus.User.ScreenName) == identity.Fold(handle)
}

func mentionsHandle(tw wireTweet, handle string) bool {
	want := identity.Fold(handle)
	if want == "" {
		return false
	}
	for _, m := range tw.Entities.UserMentions {
		if identity.Fold(m.ScreenName) == want {
			return true
		}
	}
	return false
}
