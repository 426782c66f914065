package github

import (
	"context"
	json "encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	perr "augeo/internal/platform/errors"
	"augeo/internal/services/poller/domain"
)

// Provider implements domain.ProviderPort for the GitHub events feed
type Provider struct {
	c *Client
}

// New constructs a Provider
func New(o Options) *Provider { return &Provider{c: NewClient(o)} }

// Name returns the provider identifier
func (p *Provider) Name() domain.Provider { return domain.ProviderGitHub }

// FetchPage fetches one page of the user's public events feed.
// path "" resolves to the feed root for the user's handle
func (p *Provider) FetchPage(
	ctx context.Context,
	auth domain.Auth,
	user domain.UserProfile,
	path, etag string,
) ([]domain.RawEvent, domain.PageMeta, error) {
	if path == "" {
		path = "/users/" + url.PathEscape(user.Handle) + "/events"
	}

	resp, err := p.c.do(ctx, path, auth.Token, etag)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
		}
	}()

	meta := metaFromResponse(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotModified:
		return nil, meta, nil
	case http.StatusForbidden, http.StatusTooManyRequests:
		return nil, domain.PageMeta{}, perr.Newf(perr.ErrorCodeTooManyRequests, "github events rate limited")
	default:
		return nil, domain.PageMeta{}, perr.Newf(perr.ErrorCodeUnavailable,
			"github events unexpected status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, domain.PageMeta{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github events read failed")
	}
	var wire []wireEvent
	if err := json.Unmarshal(b, &wire); err != nil {
		return nil, domain.PageMeta{}, perr.Wrapf(err, perr.ErrorCodeJSON, "github events decode failed")
	}

	out := make([]domain.RawEvent, 0, len(wire))
	for _, w := range wire {
		out = append(out, domain.RawEvent{
			ID:        w.ID,
			Type:      w.Type,
			Public:    w.Public,
			Repo:      w.Repo.Name,
			CreatedAt: w.CreatedAt,
			Payload:   []byte(w.Payload),
		})
	}
	return out, meta, nil
}

// FetchDetail resolves the commit document behind a candidate.
// ok is false when the commit exists but carries no diff stats, or the
// document is gone; both mean the candidate is dropped quietly
func (p *Provider) FetchDetail(ctx context.Context, auth domain.Auth, c domain.Candidate) (domain.Detail, bool, error) {
	resp, err := p.c.do(ctx, c.DetailRef, auth.Token, "")
	if err != nil {
		return domain.Detail{}, false, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.c.log.Error().Err(cerr).Str("path", c.DetailRef).Msg("github close body failed")
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return domain.Detail{}, false, nil
	case http.StatusForbidden, http.StatusTooManyRequests:
		return domain.Detail{}, false, perr.Newf(perr.ErrorCodeTooManyRequests, "github commit rate limited")
	default:
		return domain.Detail{}, false, perr.Newf(perr.ErrorCodeUnavailable,
			"github commit unexpected status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.Detail{}, false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github commit read failed")
	}
	var d commitDetail
	if err := json.Unmarshal(b, &d); err != nil {
		return domain.Detail{}, false, perr.Wrapf(err, perr.ErrorCodeJSON, "github commit decode failed")
	}
	if d.Stats == nil {
		return domain.Detail{}, false, nil
	}
	return domain.Detail{Additions: d.Stats.Additions, Deletions: d.Stats.Deletions}, true, nil
}

// FetchProfile fetches the public profile for a handle
func (p *Provider) FetchProfile(ctx context.Context, auth domain.Auth, handle string) (domain.RemoteProfile, error) {
	path := fmt.Sprintf("/users/%s", url.PathEscape(handle))
	resp, err := p.c.do(ctx, path, auth.Token, "")
	if err != nil {
		return domain.RemoteProfile{}, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.RemoteProfile{}, perr.Newf(perr.ErrorCodeUnavailable,
			"github user unexpected status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.RemoteProfile{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github user read failed")
	}
	var u wireUser
	if err := json.Unmarshal(b, &u); err != nil {
		return domain.RemoteProfile{}, perr.Wrapf(err, perr.ErrorCodeJSON, "github user decode failed")
	}
	return domain.RemoteProfile{
		Handle:     u.Login,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
		ProfileURL: u.HTMLURL,
	}, nil
}

// metaFromResponse lifts pagination and rate metadata off a feed response.
// Rate state counts as present only when both rate headers came back
func metaFromResponse(resp *http.Response) domain.PageMeta {
	h := resp.Header
	meta := domain.PageMeta{
		Status: resp.StatusCode,
		ETag:   h.Get("ETag"),
		Link:   h.Get("Link"),
	}
	if s := h.Get("X-Poll-Interval"); s != "" {
		if sec, err := strconv.Atoi(s); err == nil && sec > 0 {
			meta.PollInterval = time.Duration(sec) * time.Second
		}
	}
	reset := h.Get("X-RateLimit-Reset")
	remaining := h.Get("X-RateLimit-Remaining")
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
