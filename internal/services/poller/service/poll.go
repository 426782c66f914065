package service

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"augeo/internal/core/backoff"
	"augeo/internal/core/linkrel"
	"augeo/internal/core/xp"
	perr "augeo/internal/platform/errors"
	"augeo/internal/platform/logger"
	"augeo/internal/services/poller/domain"
)

// Poll runs one poll cycle: walk the feed newest first until the high
// water mark, extract attributed candidates, enrich them sequentially
// and return the advanced cursor with an advisory wait.
//
// On any page fetch error the cursor comes back untouched; the same
// events are simply fetched again next cycle
func (s *Svc) Poll(ctx context.Context, sub domain.Subscription) (domain.PollResult, error) {
	provider, ok := s.providers[sub.Provider]
	if !ok {
		return domain.PollResult{}, perr.InvalidArgf("unknown provider %q", sub.Provider)
	}

	ctx = logger.WithPoll(ctx, sub.User.Username, string(sub.Provider))
	log := logger.C(ctx)

	state := sub.State
	path := state.CursorPath

	// conditional fetch only makes sense at the feed root; deeper pages
	// are always new ground
	etag := ""
	if path == "" {
		etag = state.ETag
	}

	// a resumed walk dedups against the mark that was current when the
	// walk started; LastEventID already holds the capped cycle's ids
	mark := state.LastEventID
	if path != "" {
		mark = state.ResumeMark
	}

	var (
		candidates []domain.Candidate
		newest     = state.LastEventID
		newETag    = state.ETag
		wait       = s.config.DefaultPollInterval
		nextCursor string
	)

	for page := 0; ; page++ {
		evs, meta, err := provider.FetchPage(ctx, sub.Auth, sub.User, path, etag)
		if err != nil {
			return domain.PollResult{}, err
		}

		wait = s.advisoryWait(meta)

		if meta.Status == http.StatusNotModified {
			log.Debug().Msg("feed unchanged")
			return domain.PollResult{State: state, NextWait: wait}, nil
		}
		// the validation tag belongs to the feed root; a deep page's tag
		// must never replace it
		if path == "" && meta.ETag != "" {
			newETag = meta.ETag
		}

		reachedMark := false
		for _, ev := range evs {
			id, convErr := strconv.ParseInt(ev.ID, 10, 64)
			if convErr != nil {
				log.Debug().Str("event_id", ev.ID).Msg("non numeric event id skipped")
				continue
			}
			if mark != 0 && id <= mark {
				reachedMark = true
				break
			}
			if id > newest {
				newest = id
			}
			candidates = append(candidates, provider.Extract(ev, sub.User)...)
		}

		// once the mark is reached everything deeper is old news
		if reachedMark {
			break
		}
		next := linkrel.Next(meta.Link)
		if next == "" {
			break
		}
		if page+1 >= s.config.MaxPages {
			// resume here next cycle
			nextCursor = next
			break
		}
		path = next
		etag = ""
	}

	acts := s.enrich(ctx, provider, sub, candidates)

	state.LastEventID = newest
	state.ETag = newETag
	state.CursorPath = nextCursor
	// the boundary travels with the cursor and dies with it
	state.ResumeMark = 0
	if nextCursor != "" {
		state.ResumeMark = mark
	}

	log.Info().
		Int("candidates", len(candidates)).
		Int("activities", len(acts)).
		Int64("high_water_mark", newest).
		Dur("next_wait", wait).
		Msg("poll cycle complete")

	return domain.PollResult{Activities: acts, State: state, NextWait: wait}, nil
}

// enrich resolves detail documents one candidate at a time. The fetches
// stay sequential to keep the request budget predictable, and one bad
// candidate never loses the rest of the batch
func (s *Svc) enrich(
	ctx context.Context,
	provider domain.ProviderPort,
	sub domain.Subscription,
	cands []domain.Candidate,
) []domain.Activity {
	if len(cands) == 0 {
		return nil
	}
	log := logger.C(ctx)

	acts := make([]domain.Activity, 0, len(cands))
	for _, c := range cands {
		exp := c.Experience
		additions, deletions := 0, 0

		if c.NeedsDetail {
			d, ok, err := provider.FetchDetail(ctx, sub.Auth, c)
			if err != nil {
				log.Warn().Err(err).Str("detail_ref", c.DetailRef).Msg("detail fetch failed dropping candidate")
				continue
			}
			if !ok {
				continue
			}
			additions, deletions = d.Additions, d.Deletions
			exp = xp.ForCommit(d.Additions)
		}

		acts = append(acts, domain.Activity{
			ID:         uuid.NewString(),
			UserID:     sub.UserID,
			Provider:   c.Provider,
			EventID:    c.EventID,
			Kind:       c.Kind,
			Skill:      c.Skill,
			Text:       c.Text,
			AuthorName: c.AuthorName,
			Repo:       c.Repo,
			Additions:  additions,
			Deletions:  deletions,
			Experience: exp,
			CreatedAt:  c.CreatedAt,
		})
	}
	return acts
}

// advisoryWait folds the rate budget spread with the provider requested
// cadence; the larger of the two wins
func (s *Svc) advisoryWait(meta domain.PageMeta) time.Duration {
	wait := backoff.Wait(backoff.Rate{
		ResetEpoch: meta.RateReset,
		Remaining:  meta.RateRemaining,
		Present:    meta.RatePresent,
	}, s.now())

	interval := meta.PollInterval
	if interval <= 0 {
		interval = s.config.DefaultPollInterval
	}
	if wait < interval {
		wait = interval
	}
	return wait
}
