// Package http provides the ops endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"augeo/internal/modkit/httpkit"
	perr "augeo/internal/platform/errors"
	pollerdom "augeo/internal/services/poller/domain"
	progressdom "augeo/internal/services/progress/domain"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	States      pollerdom.StatePort
	Signals     pollerdom.SignalsPort
	Reader      progressdom.ReaderPort
	Providers   map[pollerdom.Provider]pollerdom.ProviderPort
}

type handlers struct {
	deps Deps
}

// Register mounts the ops routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/skills", h.skills)
	httpkit.Get(r, "/profile", h.profile)
	httpkit.PostJSON(r, "/subscriptions", h.subscribe)
	httpkit.DeleteJSON(r, "/subscriptions", h.unsubscribe)
	httpkit.PostJSON(r, "/poll", h.pollNow)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped unknown
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// SubscribeRequest registers a feed subscription for polling
type SubscribeRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	Provider  string `json:"provider" validate:"required,oneof=github twitter"`
	Username  string `json:"username" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Handle    string `json:"handle" validate:"required"`
	Token     string `json:"token" validate:"required"`
	Secret    string `json:"secret"`
}

// PollNowRequest pulls a subscription's next poll forward to now
type PollNowRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Provider string `json:"provider" validate:"required,oneof=github twitter"`
}

// UnsubscribeRequest drops a feed subscription
type UnsubscribeRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Provider string `json:"provider" validate:"required,oneof=github twitter"`
}

// ProfileResponse is the provider-side public profile
type ProfileResponse struct {
	Handle     string `json:"handle"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// SkillResponse is one rollup row
type SkillResponse struct {
	Skill           string `json:"skill"`
	TotalExperience int64  `json:"total_experience"`
	Level           int    `json:"level"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) ready(_ *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	pg := check("pg", h.deps.PG)
	ch := check("ch", h.deps.CH)

	overall := "ok"
	if pg.Status == "fail" || ch.Status == "fail" {
		overall = "fail"
	} else if pg.Status != "ok" || ch.Status != "ok" {
		overall = "degraded"
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{pg, ch},
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) skills(r *http.Request) (any, error) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		return nil, perr.InvalidArgf("user_id query parameter required")
	}
	rollups, err := h.deps.Reader.SkillsOf(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	out := make([]SkillResponse, 0, len(rollups))
	for _, s := range rollups {
		out = append(out, SkillResponse{
			Skill:           s.Skill,
			TotalExperience: s.TotalExperience,
			Level:           s.Level,
		})
	}
	return out, nil
}

func (h *handlers) profile(r *http.Request) (any, error) {
	userID := r.URL.Query().Get("user_id")
	provider := r.URL.Query().Get("provider")
	if userID == "" || provider == "" {
		return nil, perr.InvalidArgf("user_id and provider query parameters required")
	}
	sub, err := h.deps.States.Get(r.Context(), userID, pollerdom.Provider(provider))
	if err != nil {
		return nil, err
	}
	p, ok := h.deps.Providers[sub.Provider]
	if !ok {
		return nil, perr.InvalidArgf("no provider registered for %q", provider)
	}
	remote, err := p.FetchProfile(r.Context(), sub.Auth, sub.User.Handle)
	if err != nil {
		return nil, err
	}
	return ProfileResponse{
		Handle:     remote.Handle,
		Name:       remote.Name,
		AvatarURL:  remote.AvatarURL,
		ProfileURL: remote.ProfileURL,
	}, nil
}

func (h *handlers) subscribe(r *http.Request, req SubscribeRequest) (any, error) {
	sub := pollerdom.Subscription{
		UserID:   req.UserID,
		Provider: pollerdom.Provider(req.Provider),
		User: pollerdom.UserProfile{
			UserID:    req.UserID,
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Handle:    req.Handle,
		},
		Auth: pollerdom.Auth{Token: req.Token, Secret: req.Secret},
	}
	if err := h.deps.States.Upsert(r.Context(), sub); err != nil {
		return nil, err
	}
	return httpkit.Created(map[string]string{"user_id": req.UserID, "provider": req.Provider}), nil
}

func (h *handlers) unsubscribe(r *http.Request, req UnsubscribeRequest) (any, error) {
	if err := h.deps.States.Remove(r.Context(), req.UserID, pollerdom.Provider(req.Provider)); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

func (h *handlers) pollNow(r *http.Request, req PollNowRequest) (any, error) {
	if err := h.deps.Signals.EnqueueNow(r.Context(), req.UserID, pollerdom.Provider(req.Provider)); err != nil {
		return nil, err
	}
	return map[string]string{"status": "enqueued"}, nil
}
