package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/obentoo/depbump/internal/common/config"
)

// newPyPIServer serves /pypi/<name>/json from a name -> version map
func newPyPIServer(t *testing.T, versions map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/pypi/"), "/json")
		v, ok := versions[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"info": map[string]string{"name": name, "version": v},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func testIndexConfig(server *httptest.Server) config.IndexConfig {
	cfg := config.Default().Index
	cfg.URL = server.URL + "/pypi/{package}/json"
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	return cfg
}

func TestLatestVersion(t *testing.T) {
	server := newPyPIServer(t, map[string]string{"requests": "2.32.3", "black": "24.4.2"})

	ix, err := New(testIndexConfig(server))
	if err != nil {
		t.Fatal(err)
	}

	for name, want := range map[string]string{"requests": "2.32.3", "black": "24.4.2"} {
		got, err := ix.LatestVersion(context.Background(), name)
		if err != nil {
			t.Errorf("LatestVersion(%q) error = %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("LatestVersion(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestLatestVersionNotFound(t *testing.T) {
	server := newPyPIServer(t, nil)

	ix, err := New(testIndexConfig(server))
	if err != nil {
		t.Fatal(err)
	}

	_, err = ix.LatestVersion(context.Background(), "no-such-package")
	if !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("expected ErrPackageNotFound, got %v", err)
	}
}

func TestLatestVersionUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	ix, err := New(testIndexConfig(server))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ix.LatestVersion(context.Background(), "requests"); !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestLatestVersionServerErrorsExhaustRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testIndexConfig(server)
	cfg.MaxRetries = 1
	ix, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ix.LatestVersion(context.Background(), "requests"); !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Errorf("expected ErrMaxRetriesExceeded, got %v", err)
	}
}

func TestLatestVersionRejectsUnusableVersions(t *testing.T) {
	for _, bad := range []string{"", "   ", `1.0"`, "1.0 beta", `1\0`, "2.0\u0001", "2.0\x7f", "1.0\u200b"} {
		server := newPyPIServer(t, map[string]string{"pkg": bad})
		ix, err := New(testIndexConfig(server))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ix.LatestVersion(context.Background(), "pkg"); !errors.Is(err, ErrInvalidVersion) {
			t.Errorf("version %q: expected ErrInvalidVersion, got %v", bad, err)
		}
	}
}

func TestLatestVersionEmptyName(t *testing.T) {
	ix, err := New(config.Default().Index)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ix.LatestVersion(context.Background(), ""); !errors.Is(err, ErrEmptyPackageName) {
		t.Errorf("expected ErrEmptyPackageName, got %v", err)
	}
}

func TestURLEscapesPackageName(t *testing.T) {
	ix, err := New(config.Default().Index)
	if err != nil {
		t.Fatal(err)
	}

	if got := ix.URL("requests"); got != "https://pypi.org/pypi/requests/json" {
		t.Errorf("URL() = %q", got)
	}
	if got := ix.URL("a/b c"); got != "https://pypi.org/pypi/a%2Fb%20c/json" {
		t.Errorf("URL() = %q", got)
	}
}

func TestRequestHeaders(t *testing.T) {
	t.Setenv("DEPBUMP_INDEX_TOKEN", "tok")

	var gotAccept, gotAgent, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"info": {"version": "1.0"}}`)
	}))
	defer server.Close()

	cfg := testIndexConfig(server)
	cfg.Headers = map[string]string{"Authorization": "Token ${DEPBUMP_INDEX_TOKEN}"}
	ix, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ix.LatestVersion(context.Background(), "pkg"); err != nil {
		t.Fatal(err)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if !strings.HasPrefix(gotAgent, "depbump/") {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	if gotAuth != "Token tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default().Index
	cfg.URL = "https://pypi.org/simple/"
	if _, err := New(cfg); !errors.Is(err, config.ErrMissingPackagePlaceholder) {
		t.Errorf("expected ErrMissingPackagePlaceholder, got %v", err)
	}
}

func TestWithParserOverridesConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<h1>httpx 0.27.0</h1>`)
	}))
	defer server.Close()

	parser, err := NewHTMLParser("h1", "", `httpx (\S+)`)
	if err != nil {
		t.Fatal(err)
	}
	ix, err := New(testIndexConfig(server), WithParser(parser))
	if err != nil {
		t.Fatal(err)
	}

	got, err := ix.LatestVersion(context.Background(), "httpx")
	if err != nil {
		t.Fatal(err)
	}
	if got != "0.27.0" {
		t.Errorf("LatestVersion() = %q", got)
	}
}

func TestLatestVersionAcceptsNonASCIIPrintable(t *testing.T) {
	server := newPyPIServer(t, map[string]string{"pkg": "1.0+café"})
	ix, err := New(testIndexConfig(server))
	if err != nil {
		t.Fatal(err)
	}

	got, err := ix.LatestVersion(context.Background(), "pkg")
	if err != nil || got != "1.0+café" {
		t.Errorf("LatestVersion() = %q, %v", got, err)
	}
}

func TestWithClientRetriesThroughGivenClient(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("default headers should be set on the given client")
		}
		fmt.Fprint(w, `{"info": {"version": "2.32.3"}}`)
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClientWithConfig(RetryConfig{MaxRetries: 2, BaseDelay: time.Second, MaxDelay: 4 * time.Second})
	client.SetDelayFunc(func(d time.Duration) { delays = append(delays, d) })

	ix, err := New(testIndexConfig(server), WithClient(client))
	if err != nil {
		t.Fatal(err)
	}

	got, err := ix.LatestVersion(context.Background(), "requests")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2.32.3" {
		t.Errorf("LatestVersion() = %q", got)
	}
	if len(delays) != 2 || delays[0] != time.Second || delays[1] != 2*time.Second {
		t.Errorf("expected backoff delays [1s 2s] from the given client, got %v", delays)
	}
}

var _ Resolver = (*Index)(nil)
