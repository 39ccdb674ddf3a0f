package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	mu      sync.Mutex
	token   string
	updates []string
}

func unsignedJWT(exp time.Time) string {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims := enc.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, exp.Unix())))
	return header + "." + claims + ".c2ln"
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"token":%q,"user":{"ID":3,"Name":"Sam","Email":%q,"Role":"admin"}}`, b.token, creds["email"])
	})
	mux.HandleFunc("/api/users/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/pets", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "available" && r.Header.Get("Authorization") != "Bearer "+b.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"data":[{"id":"p1","name":"Luna","species":"cat","details":{"status":"available"},"profileSettings":{"isSpotlightFeatured":true}}]}`)
	})
	mux.HandleFunc("/pets/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.updates = append(b.updates, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		_, _ = io.WriteString(w, `{"data":{}}`)
	})
	return mux
}

type harness struct {
	fs  afero.Fs
	url string
}

func newHarness(t *testing.T, b *backend) *harness {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	return &harness{fs: afero.NewMemMapFs(), url: srv.URL}
}

// run executes one adoptionctl invocation; each gets a fresh command tree like a new process.
func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRoot(Options{
		FS:          h.fs,
		In:          strings.NewReader(stdin),
		Out:         &out,
		Err:         io.Discard,
		ProfilePath: "/home/op/.config/adoptionos/profile.yaml",
	})
	root.SetArgs(append([]string{"--api-url", h.url}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProfile_DefaultsAndRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	p, err := LoadProfile(fsys, "/cfg/profile.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, p.APIURL)
	assert.Equal(t, "/cfg/state", p.StateDir)
	assert.Equal(t, defaultTimeout, p.Timeout)

	p.APIURL = "https://shelter.example.org/"
	p.Timeout = 5 * time.Second
	require.NoError(t, SaveProfile(fsys, "/cfg/profile.yaml", p))

	raw, err := afero.ReadFile(fsys, "/cfg/profile.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "timeout: 5s")

	loaded, err := LoadProfile(fsys, "/cfg/profile.yaml")
	require.NoError(t, err)
	assert.Equal(t, "https://shelter.example.org", loaded.APIURL)
	assert.Equal(t, 5*time.Second, loaded.Timeout)
}

func TestProfile_RejectsMalformedYAML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/p.yaml", []byte("api_url: [unterminated"), 0o600))
	_, err := LoadProfile(fsys, "/p.yaml")
	require.Error(t, err)
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	b := &backend{token: unsignedJWT(exp)}
	h := newHarness(t, b)

	_, err := h.run(t, "wrong\n", "login", "--email", "sam@shelter.org", "--password-stdin")
	require.Error(t, err)

	out, err := h.run(t, "hunter2\n", "login", "--email", "sam@shelter.org", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Sam <sam@shelter.org>")

	out, err = h.run(t, "", "whoami", "--json")
	require.NoError(t, err)
	var who whoami
	require.NoError(t, json.Unmarshal([]byte(out), &who))
	require.NotNil(t, who.Identity)
	assert.Equal(t, "Sam", who.Identity.Name)
	require.NotNil(t, who.ExpiresAt)
	assert.True(t, who.ExpiresAt.Equal(exp))
	assert.False(t, who.Expired)

	out, err = h.run(t, "", "pets", "admin", "--status", "hold")
	require.NoError(t, err)
	assert.Contains(t, out, "Luna")

	_, err = h.run(t, "", "logout")
	require.NoError(t, err)
	out, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestAdminCommandsRequireLogin(t *testing.T) {
	h := newHarness(t, &backend{token: "t"})
	_, err := h.run(t, "", "pets", "adopted")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestPetsAvailableTable(t *testing.T) {
	h := newHarness(t, &backend{token: "t"})
	out, err := h.run(t, "", "pets", "available")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Luna")
	assert.Contains(t, out, "yes")
}

func TestPetsUpdateFromFile(t *testing.T) {
	b := &backend{token: "t"}
	h := newHarness(t, b)
	_, err := h.run(t, "hunter2", "login", "--email", "sam@shelter.org", "--password-stdin")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(h.fs, "/tmp/luna.json", []byte(`{"name":"Luna","species":"cat","details":{"status":"hold"}}`), 0o600))

	out, err := h.run(t, "", "pets", "update", "p1", "-f", "/tmp/luna.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated pet p1.")
	assert.Equal(t, []string{"PUT /pets/p1"}, b.updates)
}

func TestWizardProgressSurvivesInvocations(t *testing.T) {
	h := newHarness(t, &backend{token: "t"})

	out, err := h.run(t, "", "wizard", "next", "surrender")
	require.Error(t, err)
	assert.Contains(t, out, "Animal Type (Dog or Cat)")

	_, err = h.run(t, `{"animalType":"cat"}`, "wizard", "set", "surrender")
	require.NoError(t, err)
	_, err = h.run(t, "", "wizard", "next", "surrender")
	require.NoError(t, err)

	out, err = h.run(t, "", "wizard", "show", "surrender", "--json")
	require.NoError(t, err)
	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, float64(1), view["step"])

	_, err = h.run(t, "", "wizard", "reset", "surrender")
	require.NoError(t, err)
	out, err = h.run(t, "", "wizard", "show", "surrender")
	require.NoError(t, err)
	assert.Contains(t, out, "1/8")
}

func TestDemoToggleRejectsUnknownArgument(t *testing.T) {
	h := newHarness(t, &backend{token: "t"})
	_, err := h.run(t, "", "demo", "maybe")
	require.Error(t, err)
	out, err := h.run(t, "", "demo", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Demo mode on.")
}
