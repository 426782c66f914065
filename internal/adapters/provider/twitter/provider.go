package twitter

import (
	"context"
	"encoding/json/jsontext"
	json "encoding/json/v2"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	perr "augeo/internal/platform/errors"
	"augeo/internal/services/poller/domain"
)

// createdAtLayout is the v1.1 tweet timestamp format
const createdAtLayout = time.RubyDate

// wireTweet is a partial tweet document with fields we use
type wireTweet struct {
	IDStr     string `json:"id_str"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	User      struct {
		ScreenName string `json:"screen_name"`
		Name       string `json:"name"`
		AvatarURL  string `json:"profile_image_url_https"`
	} `json:"user"`
	Entities struct {
		UserMentions []struct {
			ScreenName string `json:"screen_name"`
		} `json:"user_mentions"`
	} `json:"entities"`
	RetweetedStatus *struct {
		IDStr string `json:"id_str"`
		User  struct {
			ScreenName string `json:"screen_name"`
		} `json:"user"`
	} `json:"retweeted_status"`
}

// Provider implements domain.ProviderPort for the mentions timeline
type Provider struct {
	c *Client
}

// New constructs a Provider
func New(o Options) *Provider { return &Provider{c: NewClient(o)} }

// Name returns the provider identifier
func (p *Provider) Name() domain.Provider { return domain.ProviderTwitter }

// FetchPage fetches one page of the mentions timeline. The timeline has
// no Link header so every poll is a single page; dedup happens upstream
// on tweet ids
func (p *Provider) FetchPage(
	ctx context.Context,
	auth domain.Auth,
	_ domain.UserProfile,
	path, _ string,
) ([]domain.RawEvent, domain.PageMeta, error) {
	if path == "" {
		path = "/1.1/statuses/mentions_timeline.json?count=200"
	}

	resp, err := p.c.do(ctx, path, auth.Token)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.c.log.Error().Err(cerr).Str("path", path).Msg("twitter close body failed")
		}
	}()

	meta := metaFromResponse(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		return nil, meta, nil
	case http.StatusTooManyRequests:
		return nil, domain.PageMeta{}, perr.Newf(perr.ErrorCodeTooManyRequests, "twitter timeline rate limited")
	default:
		return nil, domain.PageMeta{}, perr.Newf(perr.ErrorCodeUnavailable,
			"twitter timeline unexpected status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, domain.PageMeta{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "twitter timeline read failed")
	}

	// keep each tweet raw so the extractor decodes it once, like any
	// other provider payload
	var raws []jsontext.Value
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, domain.PageMeta{}, perr.Wrapf(err, perr.ErrorCodeJSON, "twitter timeline decode failed")
	}

	out := make([]domain.RawEvent, 0, len(raws))
	for _, raw := range raws {
		var tw wireTweet
		if err := json.Unmarshal(raw, &tw); err != nil {
			continue
		}
		created, _ := time.Parse(createdAtLayout, tw.CreatedAt)
		out = append(out, domain.RawEvent{
			ID:        tw.IDStr,
			Type:      "tweet",
			Public:    true,
			CreatedAt: created,
			Payload:   []byte(raw),
		})
	}
	return out, meta, nil
}

// FetchDetail is never needed; mentions score without enrichment
func (p *Provider) FetchDetail(context.Context, domain.Auth, domain.Candidate) (domain.Detail, bool, error) {
	return domain.Detail{}, false, nil
}

// FetchProfile fetches the public profile for a screen name
func (p *Provider) FetchProfile(ctx context.Context, auth domain.Auth, handle string) (domain.RemoteProfile, error) {
	path := "/1.1/users/show.json?screen_name=" + url.QueryEscape(handle)
	resp, err := p.c.do(ctx, path, auth.Token)
	if err != nil {
		return domain.RemoteProfile{}, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.c.log.Error().Err(cerr).Str("path", path).Msg("twitter close body failed")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.RemoteProfile{}, perr.Newf(perr.ErrorCodeUnavailable,
			"twitter user unexpected status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.RemoteProfile{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "twitter user read failed")
	}
	var u struct {
		ScreenName string `json:"screen_name"`
		Name       string `json:"name"`
		AvatarURL  string `json:"profile_image_url_https"`
	}
	if err := json.Unmarshal(b, &u); err != nil {
		return domain.RemoteProfile{}, perr.Wrapf(err, perr.ErrorCodeJSON, "twitter user decode failed")
	}
	return domain.RemoteProfile{
		Handle:     u.ScreenName,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
		ProfileURL: "https://twitter.com/" + url.PathEscape(u.ScreenName),
	}, nil
}

// metaFromResponse lifts rate metadata off a timeline response
func metaFromResponse(resp *http.Response) domain.PageMeta {
	h := resp.Header
	meta := domain.PageMeta{
		Status: resp.StatusCode,
		ETag:   h.Get("ETag"),
	}
	reset := h.Get("x-rate-limit-reset")
	remaining := h.Get("x-rate-limit-remaining")
	if reset != "" && remaining != "" {
		r, rerr := strconv.ParseInt(reset, 10, 64)
		n, nerr := strconv.Atoi(remaining)
		if rerr == nil && nerr == nil {
			meta.RateReset = r
			meta.RateRemaining = n
			meta.RatePresent = true
		}
	}
	return meta
}
