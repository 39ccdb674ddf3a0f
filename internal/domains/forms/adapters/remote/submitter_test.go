package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/adoptionos/internal/clients/http/shelter"
	"github.com/Apurer/adoptionos/internal/domains/forms/ports"
)

func TestSubmitter_PostsPayloadWithoutCredentials(t *testing.T) {
	var (
		gotMethod, gotPath, gotAuth string
		gotBody                     map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotAuth = r.Method, r.URL.Path, r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"duplicate"}`))
	}))
	defer srv.Close()

	client, err := shelter.NewClient(srv.URL, shelter.WithTokenSource(staticToken("secret")))
	require.NoError(t, err)

	reply, err := NewSubmitter(client).Submit(context.Background(), "/applications/volunteer",
		map[string]any{"firstName": "Ann", "fax_number": ""})
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, reply.Status)
	require.False(t, reply.OK())
	require.JSONEq(t, `{"error":"duplicate"}`, string(reply.Body))

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/applications/volunteer", gotPath)
	require.Empty(t, gotAuth)
	require.Equal(t, "Ann", gotBody["firstName"])
	require.Contains(t, gotBody, "fax_number")
}

func TestSubmitter_TransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := shelter.NewClient(url)
	require.NoError(t, err)

	_, err = NewSubmitter(client).Submit(context.Background(), "/applications/adoption", map[string]any{})
	require.ErrorIs(t, err, ports.ErrUnreachable)
	require.ErrorIs(t, err, shelter.ErrTransport)
}

type staticToken string

func (s staticToken) Token(context.Context) (string, bool) { return string(s), true }
