package http

import (
	stdctx "context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	perr "augeo/internal/platform/errors"
	phttp "augeo/internal/platform/net/http"
	pollerdom "augeo/internal/services/poller/domain"
	progressdom "augeo/internal/services/progress/domain"
)

type fakeStates struct {
	upserted []pollerdom.Subscription
	removed  []string
	stored   map[string]pollerdom.Subscription
}

func (f *fakeStates) Upsert(_ stdctx.Context, sub pollerdom.Subscription) error {
	f.upserted = append(f.upserted, sub)
	return nil
}

func (f *fakeStates) Get(_ stdctx.Context, userID string, p pollerdom.Provider) (pollerdom.Subscription, error) {
	sub, ok := f.stored[userID+"/"+string(p)]
	if !ok {
		return pollerdom.Subscription{}, perr.NotFoundf("subscription %s/%s not found", userID, p)
	}
	return sub, nil
}

func (f *fakeStates) Remove(_ stdctx.Context, userID string, p pollerdom.Provider) error {
	f.removed = append(f.removed, userID+"/"+string(p))
	return nil
}

func (f *fakeStates) DueSubscriptions(stdctx.Context, int, time.Time) ([]pollerdom.Subscription, error) {
	return nil, nil
}

func (f *fakeStates) SaveResult(stdctx.Context, pollerdom.Subscription, pollerdom.PollState) error {
	return nil
}

func (f *fakeStates) Reschedule(stdctx.Context, pollerdom.Subscription, time.Time) error {
	return nil
}

func (f *fakeStates) EnqueueNow(stdctx.Context, string, pollerdom.Provider) error { return nil }

type fakeSignals struct {
	enqueued []string
}

func (f *fakeSignals) EnqueueNow(_ stdctx.Context, userID string, p pollerdom.Provider) error {
	f.enqueued = append(f.enqueued, userID+"/"+string(p))
	return nil
}

type fakeReader struct {
	skills []progressdom.Skill
}

func (f *fakeReader) SkillsOf(stdctx.Context, string) ([]progressdom.Skill, error) {
	return f.skills, nil
}

// fakeProvider only serves profile lookups here
type fakeProvider struct {
	name    pollerdom.Provider
	profile pollerdom.RemoteProfile
}

func (f *fakeProvider) Name() pollerdom.Provider { return f.name }

func (f *fakeProvider) FetchPage(
	stdctx.Context, pollerdom.Auth, pollerdom.UserProfile, string, string,
) ([]pollerdom.RawEvent, pollerdom.PageMeta, error) {
	return nil, pollerdom.PageMeta{}, nil
}

func (f *fakeProvider) Extract(pollerdom.RawEvent, pollerdom.UserProfile) []pollerdom.Candidate {
	return nil
}

func (f *fakeProvider) FetchDetail(
	stdctx.Context, pollerdom.Auth, pollerdom.Candidate,
) (pollerdom.Detail, bool, error) {
	return pollerdom.Detail{}, false, nil
}

func (f *fakeProvider) FetchProfile(
	stdctx.Context, pollerdom.Auth, string,
) (pollerdom.RemoteProfile, error) {
	return f.profile, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeStates, *fakeSignals, *fakeReader) {
	t.Helper()
	states := &fakeStates{stored: map[string]pollerdom.Subscription{
		"u1/github": {
			UserID:   "u1",
			Provider: pollerdom.ProviderGitHub,
			User:     pollerdom.UserProfile{UserID: "u1", Handle: "kira"},
			Auth:     pollerdom.Auth{Token: "tok"},
		},
	}}
	signals := &fakeSignals{}
	reader := &fakeReader{skills: []progressdom.Skill{
		{UserID: "u1", Skill: "GitHub", TotalExperience: 95, Level: 3},
	}}
	gh := &fakeProvider{
		name: pollerdom.ProviderGitHub,
		profile: pollerdom.RemoteProfile{
			Handle:     "kira",
			Name:       "Kira Yoshikage",
			ProfileURL: "https://github.com/kira",
		},
	}

	r := phttp.AdaptChi(chi.NewMux())
	Register(r, Deps{
		ServiceName: "augeo-test",
		StartedAt:   time.Now(),
		States:      states,
		Signals:     signals,
		Reader:      reader,
		Providers:   map[pollerdom.Provider]pollerdom.ProviderPort{gh.name: gh},
	})

	srv := httptest.NewServer(r.Mux())
	t.Cleanup(srv.Close)
	return srv, states, signals, reader
}

func decodeEnvelope(t *testing.T, resp *http.Response) phttp.Envelope {
	t.Helper()
	defer resp.Body.Close()
	var env phttp.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || env.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d env %d", resp.StatusCode, env.StatusCode)
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["service"] != "augeo-test" || data["ok"] != true {
		t.Fatalf("health data = %#v", env.Data)
	}
}

func TestReadySkipsNilDeps(t *testing.T) {
	t.Parallel()
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatal(err)
	}
	env := decodeEnvelope(t, resp)
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("ready data = %#v", env.Data)
	}
	// no pg/ch wired in the test server, overall should degrade not fail
	if data["status"] != "degraded" {
		t.Fatalf("ready status = %v", data["status"])
	}
}

func TestSkillsRequiresUserID(t *testing.T) {
	t.Parallel()
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/skills")
	if err != nil {
		t.Fatal(err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("missing user_id status = %d", resp.StatusCode)
	}
	if env.Error == "" {
		t.Fatal("expected error message in envelope")
	}
}

func TestSkillsReturnsRollups(t *testing.T) {
	t.Parallel()
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/skills?user_id=u1")
	if err != nil {
		t.Fatal(err)
	}
	env := decodeEnvelope(t, resp)
	rows, ok := env.Data.([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("skills data = %#v", env.Data)
	}
	row := rows[0].(map[string]any)
	if row["skill"] != "GitHub" || row["total_experience"] != float64(95) || row["level"] != float64(3) {
		t.Fatalf("skills row = %#v", row)
	}
}

func TestSubscribe(t *testing.T) {
	t.Parallel()
	srv, states, _, _ := newTestServer(t)

	body := `{
		"user_id": "u1",
		"provider": "github",
		"username": "kira",
		"first_name": "Kira",
		"last_name": "Yoshikage",
		"email": "kira@example.com",
		"handle": "kira",
		"token": "tok"
	}`
	resp, err := http.Post(srv.URL+"/subscriptions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusCreated || env.StatusCode != http.StatusCreated {
		t.Fatalf("subscribe status = %d env %d", resp.StatusCode, env.StatusCode)
	}
	if len(states.upserted) != 1 {
		t.Fatalf("upserted %d subscriptions", len(states.upserted))
	}
	sub := states.upserted[0]
	if sub.Provider != pollerdom.ProviderGitHub || sub.User.Handle != "kira" || sub.Auth.Token != "tok" {
		t.Fatalf("subscription = %+v", sub)
	}
}

func TestSubscribeRejectsUnknownProvider(t *testing.T) {
	t.Parallel()
	srv, states, _, _ := newTestServer(t)

	body := `{"user_id":"u1","provider":"myspace","username":"k","handle":"k","token":"t"}`
	resp, err := http.Post(srv.URL+"/subscriptions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad provider status = %d (%s)", resp.StatusCode, env.Error)
	}
	if len(states.upserted) != 0 {
		t.Fatal("invalid subscription should not reach the store")
	}
}

func TestProfile(t *testing.T) {
	t.Parallel()
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/profile?user_id=u1&provider=github")
	if err != nil {
		t.Fatal(err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status = %d (%s)", resp.StatusCode, env.Error)
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["handle"] != "kira" || data["name"] != "Kira Yoshikage" {
		t.Fatalf("profile data = %#v", env.Data)
	}
}

func TestProfileUnknownSubscription(t *testing.T) {
	t.Parallel()
	srv, _, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/profile?user_id=nobody&provider=github")
	if err != nil {
		t.Fatal(err)
	}
	_ = decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown subscription status = %d", resp.StatusCode)
	}
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()
	srv, states, _, _ := newTestServer(t)

	body := `{"user_id":"u1","provider":"github"}`
	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/subscriptions", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unsubscribe status = %d", resp.StatusCode)
	}
	if len(states.removed) != 1 || states.removed[0] != "u1/github" {
		t.Fatalf("removed = %#v", states.removed)
	}
}

func TestPollNow(t *testing.T) {
	t.Parallel()
	srv, _, signals, _ := newTestServer(t)

	body := `{"user_id":"u1","provider":"twitter"}`
	resp, err := http.Post(srv.URL+"/poll", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("poll status = %d (%s)", resp.StatusCode, env.Error)
	}
	if len(signals.enqueued) != 1 || signals.enqueued[0] != "u1/twitter" {
		t.Fatalf("enqueued = %#v", signals.enqueued)
	}
}
