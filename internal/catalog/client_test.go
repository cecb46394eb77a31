package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/icholy/digest"

	"nropster/internal/config"
	"nropster/internal/logging"
	"nropster/internal/services"
)

const (
	testMAK   = "8185711423"
	testRealm = "TiVo DVR"
	testNonce = "4f1c9a"
)

// digestGate answers unauthenticated requests with a challenge and reports
// whether the request carried valid credentials.
func digestGate(t *testing.T, w http.ResponseWriter, r *http.Request) bool {
	t.Helper()
	chal := &digest.Challenge{Realm: testRealm, Nonce: testNonce, QOP: []string{"auth"}}
	auth := r.Header.Get("Authorization")
	if auth != "" {
		cred, err := digest.ParseCredentials(auth)
		if err == nil {
			want, err := digest.Digest(chal, digest.Options{
				Method:   r.Method,
				URI:      r.URL.RequestURI(),
				Count:    cred.Nc,
				Cnonce:   cred.Cnonce,
				Username: "tivo",
				Password: testMAK,
			})
			if err == nil && cred.Username == "tivo" && cred.Response == want.Response {
				return true
			}
		}
	}
	w.Header().Set("WWW-Authenticate", chal.String())
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = io.WriteString(w, "Auth required")
	return false
}

func listingItem(n int) string {
	return fmt.Sprintf(`<Item><Details><ContentType>video/x-tivo-raw-tts</ContentType><Title>Show %d</Title><SourceSize>%d</SourceSize><Duration>60000</Duration><CaptureDate>%x</CaptureDate></Details><Links><Content><Url>http://rec/download/%d</Url></Content><CustomIcon><Url>urn:tivo:image:save-until-i-delete-recording</Url></CustomIcon></Links></Item>`,
		n, n*100, 1_700_000_000+n, n)
}

func newTestClient(t *testing.T, server *httptest.Server, mak string, pageSize int) *Client {
	t.Helper()
	client, err := NewClient(config.Device{
		Address:        server.URL,
		Username:       "tivo",
		MediaAccessKey: mak,
		InsecureTLS:    true,
		PageSize:       pageSize,
		RequestTimeout: 5,
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestFetchListingFollowsPages(t *testing.T) {
	const total = 5
	var pages atomic.Int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !digestGate(t, w, r) {
			return
		}
		if r.URL.Path != "/TiVoConnect" || r.URL.Query().Get("Container") != "/NowPlaying" {
			http.NotFound(w, r)
			return
		}
		pages.Add(1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("AnchorOffset"))
		count, _ := strconv.Atoi(r.URL.Query().Get("ItemCount"))
		var b strings.Builder
		fmt.Fprintf(&b, "<TiVoContainer><Details><TotalItems>%d</TotalItems></Details><ItemStart>%d</ItemStart>", total, offset)
		for i := offset; i < total && i < offset+count; i++ {
			b.WriteString(listingItem(i))
		}
		b.WriteString("</TiVoContainer>")
		_, _ = io.WriteString(w, b.String())
	}))
	defer server.Close()

	client := newTestClient(t, server, testMAK, 2)
	data, err := client.FetchListing(context.Background())
	if err != nil {
		t.Fatalf("FetchListing: %v", err)
	}
	if got := pages.Load(); got != 3 {
		t.Fatalf("expected 3 authenticated page requests, got %d", got)
	}
	recordings, err := Parse(strings.NewReader(string(data)), nil)
	if err != nil {
		t.Fatalf("Parse merged listing: %v", err)
	}
	if len(recordings) != total {
		t.Fatalf("expected %d recordings, got %d", total, len(recordings))
	}
	if recordings[4].Title != "Show 4" {
		t.Fatalf("unexpected last recording %q", recordings[4].Title)
	}
}

func TestFetchListingUnreachable(t *testing.T) {
	server := httptest.NewTLSServer(http.NotFoundHandler())
	server.Close()

	client := newTestClient(t, server, testMAK, 50)
	_, err := client.FetchListing(context.Background())
	if !errors.Is(err, services.ErrSourceUnreachable) {
		t.Fatalf("expected ErrSourceUnreachable, got %v", err)
	}
}

func TestFetchListingRejectedCredentials(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		digestGate(t, w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server, "wrong", 50)
	_, err := client.FetchListing(context.Background())
	if !errors.Is(err, services.ErrSourceUnreachable) {
		t.Fatalf("expected ErrSourceUnreachable, got %v", err)
	}
}

func TestOpenStreamDeliversHandshakeFirst(t *testing.T) {
	payload := strings.Repeat("mpeg", 50_000)
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !digestGate(t, w, r) {
			return
		}
		_, _ = io.WriteString(w, payload)
	}))
	defer server.Close()

	client := newTestClient(t, server, testMAK, 50)
	stream, err := client.Open(context.Background(), server.URL+"/download/show.TiVo?id=1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer stream.Close()

	first, err := stream.Next()
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if string(first) != "Auth required" {
		t.Fatalf("expected challenge body as handshake frame, got %q", first)
	}

	var body strings.Builder
	for {
		frame, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		body.Write(frame)
	}
	if body.String() != payload {
		t.Fatalf("content mismatch: got %d bytes want %d", body.Len(), len(payload))
	}
}

func TestOpenStreamBusy(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !digestGate(t, w, r) {
			return
		}
		http.Error(w, "Server Busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server, testMAK, 50)
	_, err := client.Open(context.Background(), server.URL+"/download/show.TiVo")
	if services.Classify(err) != services.KindBusy {
		t.Fatalf("expected busy classification, got %v", err)
	}
}

func TestOpenStreamBadKeyIsFatal(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		digestGate(t, w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server, "nope", 50)
	_, err := client.Open(context.Background(), server.URL+"/download/show.TiVo")
	if services.Classify(err) != services.KindFatal {
		t.Fatalf("expected fatal classification, got %v", err)
	}
	if !errors.Is(err, services.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed marker, got %v", err)
	}
}

type staticLister struct {
	data  []byte
	err   error
	calls int
}

func (s *staticLister) FetchListing(context.Context) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

func TestLoadWritesAndReusesCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "now_playing.xml")
	lister := &staticLister{data: []byte(sampleListing)}

	recordings, err := Load(context.Background(), lister, cachePath, false, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recordings) != 3 {
		t.Fatalf("expected 3 recordings, got %d", len(recordings))
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("expected cache file: %v", err)
	}

	cached, err := Load(context.Background(), nil, cachePath, true, logging.NewNop())
	if err != nil {
		t.Fatalf("Load cached: %v", err)
	}
	if len(cached) != 3 || lister.calls != 1 {
		t.Fatalf("expected cached load without device call, got %d recordings and %d calls", len(cached), lister.calls)
	}
}

func TestLoadCachedMissing(t *testing.T) {
	_, err := Load(context.Background(), nil, filepath.Join(t.TempDir(), "missing.xml"), true, logging.NewNop())
	if !errors.Is(err, services.ErrSourceUnreachable) {
		t.Fatalf("expected ErrSourceUnreachable, got %v", err)
	}
}

func TestLoadPropagatesListerFailure(t *testing.T) {
	lister := &staticLister{err: services.Wrap(services.ErrSourceUnreachable, "catalog", "query", "", errors.New("no route"))}
	_, err := Load(context.Background(), lister, "", false, logging.NewNop())
	if !errors.Is(err, services.ErrSourceUnreachable) {
		t.Fatalf("expected ErrSourceUnreachable, got %v", err)
	}
}

func TestDeviceURL(t *testing.T) {
	cases := map[string]string{
		"10.0.1.7":                "https://10.0.1.7",
		"https://tivo.local:8443/": "https://tivo.local:8443",
		"http://rec":              "http://rec",
	}
	for in, want := range cases {
		got, err := deviceURL(in)
		if err != nil {
			t.Fatalf("deviceURL(%q): %v", in, err)
		}
		if got.String() != want {
			t.Fatalf("deviceURL(%q) = %q, want %q", in, got.String(), want)
		}
	}
	if _, err := deviceURL(""); err == nil {
		t.Fatal("expected error for empty address")
	}
}
