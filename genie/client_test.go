package genie

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

func newTestClient(t *testing.T, srv *httptest.Server, pageSize int) *Client {
	cfg := NewDefaultConfig(srv.URL, "dapi-test")
	cfg.PageSize = pageSize
	cfg.Throttle = 0
	cfg.RetryWait = time.Millisecond
	cfg.RetryMaxWait = 5 * time.Millisecond
	c, err := NewClient(logrus.New(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// pagedHandler serves n spaces using the offset as page token.
func pagedHandler(n int, requests *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		start, _ := strconv.Atoi(r.URL.Query().Get("page_token"))
		end := start + size
		if end > n {
			end = n
		}
		items := make([]string, 0, size)
		for i := start; i < end; i++ {
			items = append(items, fmt.Sprintf(`{"space_id":"s%v","title":"t%v"}`, i, i))
		}
		next := `null`
		if end < n {
			next = strconv.Quote(strconv.Itoa(end))
		}
		_, _ = fmt.Fprintf(w, `{"spaces":[%v],"next_page_token":%v}`, strings.Join(items, ","), next)
	}
}

func TestPagerYieldsEveryItemOnce(t *testing.T) {
	g := NewGomegaWithT(t)
	const total = 7
	for _, size := range []int{1, 2, 3, 100} {
		var requests int32
		srv := httptest.NewServer(pagedHandler(total, &requests))
		c := newTestClient(t, srv, size)
		items, err := All(context.Background(), c.Spaces())
		srv.Close()
		g.Expect(err).To(BeNil())
		g.Expect(items).To(HaveLen(total), "page size %v", size)
		seen := make(map[string]bool)
		for _, i := range items {
			seen[string(i)] = true
		}
		g.Expect(seen).To(HaveLen(total), "page size %v returned duplicates", size)
		g.Expect(int(requests)).To(Equal((total+size-1)/size), "page size %v", size)
	}
}

func TestPagerStopsOnNullToken(t *testing.T) {
	g := NewGomegaWithT(t)
	var requests int32
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		gotQuery = r.URL.RawQuery
		g.Expect(r.Header.Get("Authorization")).To(Equal("Bearer dapi-test"))
		_, _ = io.WriteString(w, `{"conversations":[{"conversation_id":"c1"}],"next_page_token":null}`)
	}))
	defer srv.Close()
	c := newTestClient(t, srv, 100)
	p := c.Conversations("s1")
	items, err := p.Next(context.Background())
	g.Expect(err).To(BeNil())
	g.Expect(items).To(HaveLen(1))
	_, err = p.Next(context.Background())
	g.Expect(err).To(Equal(io.EOF))
	g.Expect(int(requests)).To(Equal(1))
	g.Expect(gotQuery).To(ContainSubstring("include_all=true"))
	g.Expect(gotQuery).To(ContainSubstring("page_size=100"))
	g.Expect(gotQuery).NotTo(ContainSubstring("page_token"))
}

func TestPagerStopsOnEmptyOrMissingToken(t *testing.T) {
	g := NewGomegaWithT(t)
	for _, body := range []string{
		`{"messages":[{"message_id":"m1"}],"next_page_token":""}`,
		`{"messages":[{"message_id":"m1"}]}`,
		`{}`,
	} {
		var requests int32
		b := body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requests, 1)
			_, _ = io.WriteString(w, b)
		}))
		c := newTestClient(t, srv, 10)
		_, err := All(context.Background(), c.Messages("s1", "c1"))
		srv.Close()
		g.Expect(err).To(BeNil())
		g.Expect(int(requests)).To(Equal(1), body)
	}
}

func TestPagerRejectsRepeatedToken(t *testing.T) {
	g := NewGomegaWithT(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"spaces":[],"next_page_token":"same"}`)
	}))
	defer srv.Close()
	c := newTestClient(t, srv, 10)
	_, err := All(context.Background(), c.Spaces())
	g.Expect(err).NotTo(BeNil())
	g.Expect(err.Error()).To(ContainSubstring("did not advance"))
}

func TestPagerRetriesTooManyRequests(t *testing.T) {
	g := NewGomegaWithT(t)
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"spaces":[{"space_id":"s1"},{"space_id":"s2"}]}`)
	}))
	defer srv.Close()
	c := newTestClient(t, srv, 10)
	items, err := All(context.Background(), c.Spaces())
	g.Expect(err).To(BeNil())
	g.Expect(items).To(HaveLen(2))
	g.Expect(int(requests)).To(Equal(2))
}

func TestPagerGivesUpAfterMaxRetries(t *testing.T) {
	g := NewGomegaWithT(t)
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := newTestClient(t, srv, 10)
	c.cfg.MaxRetries = 2
	_, err := All(context.Background(), c.Spaces())
	g.Expect(IsStatus(err, http.StatusServiceUnavailable)).To(BeTrue())
	g.Expect(int(requests)).To(Equal(3))
}

func TestPagerFailsFastOnClientError(t *testing.T) {
	g := NewGomegaWithT(t)
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error_code":"PERMISSION_DENIED"}`)
	}))
	defer srv.Close()
	c := newTestClient(t, srv, 10)
	_, err := All(context.Background(), c.Spaces())
	g.Expect(IsStatus(err, http.StatusForbidden)).To(BeTrue())
	g.Expect(err.Error()).To(ContainSubstring("PERMISSION_DENIED"))
	g.Expect(int(requests)).To(Equal(1))
}

func TestPagerCallsPageHandler(t *testing.T) {
	g := NewGomegaWithT(t)
	var requests int32
	srv := httptest.NewServer(pagedHandler(3, &requests))
	defer srv.Close()
	c := newTestClient(t, srv, 2)
	var pages []Page
	c.SetPageHandler(func(ctx context.Context, p Page) error {
		pages = append(pages, p)
		return nil
	})
	_, err := All(context.Background(), c.Spaces())
	g.Expect(err).To(BeNil())
	g.Expect(pages).To(HaveLen(2))
	g.Expect(pages[1].Number).To(Equal(2))
	g.Expect(pages[0].Kind).To(Equal(KindSpaces))
}

func TestGetUser(t *testing.T) {
	g := NewGomegaWithT(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/2.0/preview/scim/v2/Users/42":
			_, _ = io.WriteString(w, `{"id":"42","displayName":"Ann","userName":"ann@example.com","active":true}`)
		case "/api/2.0/preview/scim/v2/Users/sp":
			_, _ = io.WriteString(w, `{"id":"sp","displayName":"Bot","emails":[{"value":"x@y","primary":false},{"value":"bot@example.com","primary":true}]}`)
		case "/api/2.0/preview/scim/v2/Users/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv, 10)
	c.cfg.MaxRetries = 0
	u, err := c.GetUser(context.Background(), "42")
	g.Expect(err).To(BeNil())
	g.Expect(u.DisplayName).To(Equal("Ann"))
	g.Expect(u.Email).To(Equal("ann@example.com"))
	g.Expect(*u.Active).To(BeTrue())
	u, err = c.GetUser(context.Background(), "sp")
	g.Expect(err).To(BeNil())
	g.Expect(u.Email).To(Equal("bot@example.com"))
	g.Expect(u.Active).To(BeNil())
	_, err = c.GetUser(context.Background(), "missing")
	g.Expect(err).To(Equal(ErrUserNotFound))
	_, err = c.GetUser(context.Background(), "500")
	g.Expect(err).NotTo(Equal(ErrUserNotFound))
	g.Expect(IsStatus(err, http.StatusInternalServerError)).To(BeTrue())
}

func TestUploadFile(t *testing.T) {
	g := NewGomegaWithT(t)
	var requests int32
	var gotPath, gotQuery, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = ioutil.ReadAll(r.Body)
		g.Expect(r.Method).To(Equal(http.MethodPut))
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	c := newTestClient(t, srv, 10)
	err := c.UploadFile(context.Background(), "/Volumes/main/raw/files/in/a.csv", strings.NewReader("a,b\n1,2\n"))
	g.Expect(err).To(BeNil())
	g.Expect(gotPath).To(Equal("/api/2.0/fs/files/Volumes/main/raw/files/in/a.csv"))
	g.Expect(gotQuery).To(Equal("overwrite=true"))
	g.Expect(gotType).To(Equal("application/octet-stream"))
	g.Expect(string(gotBody)).To(Equal("a,b\n1,2\n"), "body must be rewound for the retry")
	g.Expect(c.UploadFile(context.Background(), "/tmp/a.csv", strings.NewReader(""))).NotTo(BeNil())
}

func TestVolumeTarget(t *testing.T) {
	cases := []struct {
		volume, subdir, file, want string
		wantErr                    bool
	}{
		{"main.raw.files", "", "/tmp/a.csv", "/Volumes/main/raw/files/a.csv", false},
		{"main.raw.files", "/in/2024/", "a.csv", "/Volumes/main/raw/files/in/2024/a.csv", false},
		{"main.raw", "", "a.csv", "", true},
		{"main..files", "", "a.csv", "", true},
		{"a.b.c.d", "", "a.csv", "", true},
		{"main.raw.files", "", "", "", true},
		{" main.raw.files ", "", "a.csv", "/Volumes/main/raw/files/a.csv", false},
		{"main . raw . files", "in", "a.csv", "/Volumes/main/raw/files/in/a.csv", false},
		{"main.raw.files", "../../other", "/tmp/a.csv", "", true},
		{"main.raw.files", "../x", "a.csv", "", true},
		{"main.raw.files", "in/./x", "a.csv", "", true},
		{"main.raw.files", "in//x", "a.csv", "", true},
		{"main.raw/../x.files", "", "a.csv", "", true},
		{"main.raw.files", "", "/tmp/..", "", true},
	}
	for _, tc := range cases {
		got, err := VolumeTarget(tc.volume, tc.subdir, tc.file)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for volume %q file %q", tc.volume, tc.file)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for volume %q: %v", tc.volume, err)
		}
		if got != tc.want {
			t.Fatalf("volume %q subdir %q: got %q, want %q", tc.volume, tc.subdir, got, tc.want)
		}
	}
}

func TestThrottleSpacesRequests(t *testing.T) {
	g := NewGomegaWithT(t)
	th := NewThrottle(20 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		g.Expect(th.Wait(context.Background())).To(BeNil())
	}
	g.Expect(time.Since(start)).To(BeNumerically(">=", 40*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g.Expect(th.Wait(ctx)).To(Equal(context.Canceled))
	var nilThrottle *Throttle
	g.Expect(nilThrottle.Wait(context.Background())).To(BeNil())
}

func TestNewClientRequiresHostAndToken(t *testing.T) {
	if _, err := NewClient(logrus.New(), Config{Host: "https://x"}); err == nil {
		t.Fatal("expected error without token")
	}
}
