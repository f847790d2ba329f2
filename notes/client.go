// Package notes is a REST client for the groupware Notes JSON API. Notes
// are plain JSON documents addressed by numeric id; none of the DAV
// machinery applies, but updates honor the same etag discipline through
// If-Match.
package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tmaehler/davbox/davclient"
	"github.com/tmaehler/davbox/internal/httpclient"
)

const apiPath = "/index.php/apps/notes/api/v1/notes"

// Note is one JSON note. ETag mirrors the HTTP header of the response
// that produced the note and guards the next update when present.
type Note struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Modified int64  `json:"modified"`
	Favorite bool   `json:"favorite"`
	ETag     string `json:"-"`
}

// Options configure a notes client. ServerURL, Username and Password are
// the same credentials the DAV client uses.
type Options struct {
	ServerURL string
	Username  string
	Password  string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Client talks to the Notes app of one server.
type Client struct {
	baseURL string
	http    *http.Client
	auth    func(*http.Request)
	logger  *slog.Logger
}

// New builds a notes client from the options.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: server URL %q", davclient.ErrInvalidInput, opts.ServerURL)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: timeout},
		auth: func(r *http.Request) {
			if opts.Username != "" || opts.Password != "" {
				r.SetBasicAuth(opts.Username, opts.Password)
			}
		},
		logger: logger,
	}, nil
}

// List returns all notes.
func (c *Client) List(ctx context.Context) ([]Note, error) {
	data, _, err := c.doRequest(ctx, http.MethodGet, apiPath, nil, "")
	if err != nil {
		return nil, err
	}
	var out []Note
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notes: %w", err)
	}
	return out, nil
}

// Get returns one note by id.
func (c *Client) Get(ctx context.Context, id int64) (Note, error) {
	data, etag, err := c.doRequest(ctx, http.MethodGet, c.notePath(id), nil, "")
	if err != nil {
		return Note{}, c.mapError(err, id)
	}
	return decodeNote(data, etag)
}

// Create stores a new note and returns it with the server-assigned id.
func (c *Client) Create(ctx context.Context, title, content, category string) (Note, error) {
	if title == "" && content == "" {
		return Note{}, fmt.Errorf("%w: note needs a title or content", davclient.ErrInvalidInput)
	}
	body := noteUpdate{Title: title, Content: content, Category: category}
	data, etag, err := c.doRequest(ctx, http.MethodPost, apiPath, body, "")
	if err != nil {
		return Note{}, err
	}
	return decodeNote(data, etag)
}

// Update rewrites a note. When the note carries an etag it is sent as
// If-Match, so a concurrent edit on the server surfaces as a conflict
// instead of being overwritten.
func (c *Client) Update(ctx context.Context, note Note) (Note, error) {
	if note.ID == 0 {
		return Note{}, fmt.Errorf("%w: note id missing", davclient.ErrInvalidInput)
	}
	body := noteUpdate{
		Title:    note.Title,
		Content:  note.Content,
		Category: note.Category,
		Favorite: note.Favorite,
	}
	data, etag, err := c.doRequest(ctx, http.MethodPut, c.notePath(note.ID), body, note.ETag)
	if err != nil {
		return Note{}, c.mapError(err, note.ID)
	}
	return decodeNote(data, etag)
}

// Delete removes the note with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, _, err := c.doRequest(ctx, http.MethodDelete, c.notePath(id), nil, "")
	if err != nil {
		return c.mapError(err, id)
	}
	return nil
}

type noteUpdate struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Favorite bool   `json:"favorite"`
}

func (c *Client) notePath(id int64) string {
	return apiPath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) mapError(err error, id int64) error {
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return fmt.Errorf("no note with id %d: %w", id, davclient.ErrNotFound)
	}
	if httpclient.IsStatus(err, http.StatusPreconditionFailed) {
		return fmt.Errorf("note %d changed on the server since it was read: %w", id, davclient.ErrConflict)
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, ifMatch string) ([]byte, string, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ifMatch != "" {
		req.Header.Set("If-Match", ifMatch)
	}
	c.auth(req)

	c.logger.Debug("notes request", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("notes response", "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode >= 400 {
		return nil, "", &httpclient.StatusError{Code: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}
	return respBody, resp.Header.Get("ETag"), nil
}

func decodeNote(data []byte, etag string) (Note, error) {
	var note Note
	if err := json.Unmarshal(data, &note); err != nil {
		return Note{}, fmt.Errorf("failed to unmarshal note: %w", err)
	}
	note.ETag = etag
	return note, nil
}
