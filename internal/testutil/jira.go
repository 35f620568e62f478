package testutil

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
)

// Fake tracker credentials accepted by NewFakeJira
const (
	JiraUser  = "testuser"
	JiraToken = "testtoken"
)

// FakeJira serves the issue lookup endpoint on a loopback port.
// Unknown keys answer 404; wrong credentials answer 401.
type FakeJira struct {
	URL string

	mu       sync.Mutex
	statuses map[string]int
	fallback int
	delay    time.Duration
	requests []string
}

// NewFakeJira starts a fake tracker that is shut down with the test
func NewFakeJira(t *testing.T) *FakeJira {
	t.Helper()

	f := &FakeJira{
		statuses: make(map[string]int),
		fallback: fiber.StatusNotFound,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true, Immutable: true})
	app.Use(func(c *fiber.Ctx) error {
		f.mu.Lock()
		f.requests = append(f.requests, c.Path())
		f.mu.Unlock()
		return c.Next()
	})
	app.Use(basicauth.New(basicauth.Config{
		Users: map[string]string{JiraUser: JiraToken},
	}))
	app.Get("/rest/api/2/issue/:key", f.handleIssue)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.ShutdownWithTimeout(time.Second)
	})

	f.URL = "http://" + ln.Addr().String()
	return f
}

func (f *FakeJira) handleIssue(c *fiber.Ctx) error {
	key := c.Params("key")

	f.mu.Lock()
	status, ok := f.statuses[key]
	if !ok {
		status = f.fallback
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if status == fiber.StatusOK {
		return c.JSON(fiber.Map{
			"key":    key,
			"fields": fiber.Map{"summary": "Mocked issue summary"},
		})
	}
	return c.SendStatus(status)
}

// Issue sets the status returned for key
func (f *FakeJira) Issue(key string, status int) *FakeJira {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[key] = status
	return f
}

// Existing marks keys as present (200)
func (f *FakeJira) Existing(keys ...string) *FakeJira {
	for _, k := range keys {
		f.Issue(k, fiber.StatusOK)
	}
	return f
}

// Fallback sets the status for keys without an explicit entry
func (f *FakeJira) Fallback(status int) *FakeJira {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallback = status
	return f
}

// Delay makes every issue lookup wait before answering
func (f *FakeJira) Delay(d time.Duration) *FakeJira {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
	return f
}

// Requests returns the request paths seen so far, in arrival order
func (f *FakeJira) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}
