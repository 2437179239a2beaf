// Package api is the client for the remote marketplace API. Every response
// arrives in the {success, data, message} envelope; each endpoint decodes data
// into a declared type and validates it before handing it to callers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultMessage is shown when the server gave no message of its own.
const DefaultMessage = "Request failed"

// Error is any failed call: transport failure, non-2xx status or success=false.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = DefaultMessage
	}
	if e.Status == 0 {
		return "api: " + msg
	}
	return fmt.Sprintf("api: %d: %s", e.Status, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the server-provided message carried by err, or fallback.
func Message(err error, fallback string) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if fallback == "" {
		return DefaultMessage
	}
	return fallback
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == status
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

type Client struct {
	base    string
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{base: baseURL, timeout: timeout}
}

// callTimeout honours the context deadline when it is tighter than the client default.
func (c *Client) callTimeout(ctx context.Context) time.Duration {
	d := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < d {
			d = left
		}
	}
	return d
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return &Error{Err: err}
	}
	timeout := c.callTimeout(ctx)
	if timeout <= 0 {
		return &Error{Err: context.DeadlineExceeded}
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.base + path)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		a.JSON(body)
	}
	a.Timeout(timeout)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return &Error{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}

	code, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return &Error{Err: fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Status: code, Err: fmt.Errorf("%s %s: decode envelope: %w", method, path, err)}
	}
	if code < 200 || code > 299 || !env.Success {
		return &Error{Status: code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Status: code, Err: fmt.Errorf("%s %s: decode data: %w", method, path, err)}
	}
	return nil
}

// Session is a Client bound to a bearer credential.
type Session struct {
	c     *Client
	token string
}

func (c *Client) As(token string) *Session { return &Session{c: c, token: token} }

func (s *Session) Token() string { return s.token }
