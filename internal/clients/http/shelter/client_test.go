package shelter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, bool) { return string(s), s != "" }

type recordingInterceptor struct {
	mu    sync.Mutex
	paths []string
	codes []int
}

func (r *recordingInterceptor) InterceptResponse(_ context.Context, req Request, resp *Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, req.Path)
	r.codes = append(r.codes, resp.StatusCode)
}

func TestClient_BearerAndQuery(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"data":[]}`)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", WithTokenSource(staticToken("secret")))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), Request{
		Path:  "/pets",
		Query: url.Values{"status": {"available"}, "sort": {"age"}},
		Auth:  AuthBearer,
	})
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, "/pets", gotPath)
	require.Equal(t, "sort=age&status=available", gotQuery)
}

func TestClient_NoCredentialsForPublicRequests(t *testing.T) {
	var gotAuth string
	var gotCookies int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCookies = len(r.Cookies())
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithTokenSource(staticToken("secret")))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), Request{Path: "/pets"})
	require.NoError(t, err)
	require.Empty(t, gotAuth)

	_, err = client.Do(context.Background(), Request{Path: "/pets"})
	require.NoError(t, err)
	require.Zero(t, gotCookies, "public requests never store or send cookies")
}

func TestClient_CookieRoundTrip(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err == nil {
			seen = append(seen, c.Value)
		}
		if r.URL.Path == "/api/login" {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/login", Body: map[string]string{"email": "a@b.c"}, Auth: AuthCookie})
	require.NoError(t, err)
	_, err = client.Do(context.Background(), Request{Path: "/api/users/me", Auth: AuthCookie})
	require.NoError(t, err)

	require.Equal(t, []string{"abc"}, seen)
}

func TestClient_InterceptorsSeeEveryResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"unauthorized"}`)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	rec := &recordingInterceptor{}
	client.Use(rec)

	resp, err := client.Do(context.Background(), Request{Path: "/pets"})
	require.NoError(t, err, "non-2xx is not a transport error")
	require.Equal(t, []string{"/pets"}, rec.paths)
	require.Equal(t, []int{http.StatusUnauthorized}, rec.codes)

	var apiErr *APIError
	require.ErrorAs(t, resp.Err(), &apiErr)
	require.Equal(t, "unauthorized", apiErr.Message)
}

func TestClient_TransportErrorSkipsInterceptors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	client, err := NewClient(base)
	require.NoError(t, err)
	rec := &recordingInterceptor{}
	client.Use(rec)

	_, err = client.Do(context.Background(), Request{Path: "/pets"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransport))
	require.Empty(t, rec.paths)
}

func TestClient_SendsJSONBodyUnchanged(t *testing.T) {
	var got map[string]any
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	_, err = client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/applications/volunteer",
		Body:   map[string]any{"firstName": "Jane", "fax_number": ""},
	})
	require.NoError(t, err)
	require.Equal(t, "application/json", contentType)
	require.Equal(t, map[string]any{"firstName": "Jane", "fax_number": ""}, got)
}

func TestClient_EscapedPathSegments(t *testing.T) {
	var gotRaw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRaw = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL + "/v2")
	require.NoError(t, err)
	_, err = client.Do(context.Background(), Request{Method: http.MethodPut, Path: "/pets/a%2Fb", Body: map[string]any{}})
	require.NoError(t, err)
	require.Equal(t, "/v2/pets/a%2Fb", gotRaw)
}

func TestNewClient_RequiresAbsoluteURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
	_, err = NewClient("/relative")
	require.Error(t, err)
}
