package github

import (
	json "encoding/json/v2"

	"augeo/internal/core/identity"
	"augeo/internal/core/xp"
	"augeo/internal/services/poller/domain"
)

// skillName is the skill commits accrue experience under
const skillName = "GitHub"

// Extract cuts commit candidates from a push event. Non push events,
// private events and commits whose author does not match the user's
// registered name or email yield nothing; a payload that fails to
// decode drops the event quietly
func (p *Provider) Extract(ev domain.RawEvent, user domain.UserProfile) []domain.Candidate {
	if ev.Type != "PushEvent" || !ev.Public {
		return nil
	}

	var pl pushPayload
	if err := json.Unmarshal(ev.Payload, &pl); err != nil {
		p.c.log.Debug().Str("event_id", ev.ID).Msg("github push payload decode failed")
		return nil
	}

	var out []domain.Candidate
	for _, cm := range pl.Commits {
		// non distinct commits already surfaced in an earlier event
		if !cm.Distinct {
			continue
		}
		if !identity.NameMatches(cm.Author.Name, user.FirstName, user.LastName) &&
			!identity.EmailMatches(cm.Author.Email, user.Email) {
			continue
		}

		out = append(out, domain.Candidate{
			Provider:    domain.ProviderGitHub,
			EventID:     ev.ID,
			Kind:        domain.KindCommit,
			Skill:       skillName,
			Text:        cm.Message,
			AuthorName:  cm.Author.Name,
			Repo:        ev.Repo,
			DetailRef:   "/repos/" + ev.Repo + "/commits/" + cm.SHA,
			Experience:  xp.MinExperience,
			NeedsDetail: true,
			CreatedAt:   ev.CreatedAt,
		})
	}
	return out
}
