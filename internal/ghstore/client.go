package ghstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrMissingToken - writes against the repo need a bearer token, reads may not
// (depends on repo visibility).
var ErrMissingToken = errors.New("github token not set, cannot write")

const cacheKeyPrefix = "file::"

// Client reads and writes single files in a GitHub repo through the contents
// API. A file's sha acts as the optimistic-concurrency token on writes: the
// client re-reads it right before every PUT, so the last writer to finish the
// read-modify-write cycle wins.
type Client struct {
	baseURL    string // https://api.github.com
	owner      string
	repo       string
	branch     string
	token      string
	httpClient *http.Client
	metrics    *metrics.Manager // optional

	// read cache, invalidated on successful writes (read-your-writes)
	cache         *freecache.Cache
	cacheExpireIn int // seconds
}

type ClientParams struct {
	BaseURL            string
	Owner, Repo        string
	Branch             string
	Token              string
	HTTPClient         *http.Client
	Metrics            *metrics.Manager
	CacheTTLSeconds    int
	CacheSizeMegabytes int
}

type cachedFile struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type contentsResponse struct {
	SHA     string `json:"sha"`
	Content string `json:"content"`
}

type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

func NewClient(params ClientParams) *Client {
	cacheSizeMb := params.CacheSizeMegabytes
	if cacheSizeMb <= 0 {
		cacheSizeMb = 10
	}
	return &Client{
		baseURL:       params.BaseURL,
		owner:         params.Owner,
		repo:          params.Repo,
		branch:        params.Branch,
		token:         params.Token,
		httpClient:    params.HTTPClient,
		metrics:       params.Metrics,
		cache:         freecache.NewCache(cacheSizeMb * 1024 * 1024),
		cacheExpireIn: params.CacheTTLSeconds,
	}
}

// Read returns the file content and its sha. A missing file is not an error:
// both content and sha come back empty.
func (c *Client) Read(ctx context.Context, path string) (string, string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ghstore.read")
	defer span.End()
	span.SetAttributes(attribute.String("file.path", path))

	cacheKey := []byte(cacheKeyPrefix + path)
	if cachedBytes, err := c.cache.Get(cacheKey); err == nil {
		var cached cachedFile
		if err := json.Unmarshal(cachedBytes, &cached); err == nil {
			span.SetAttributes(attribute.Bool("file.from-cache", true))
			log.Tracef("ghstore: found %s in cache", path)
			return cached.Content, cached.SHA, nil
		}
		log.Errorf("ghstore: failed to unmarshal cached file %s: %s", path, err)
	}
	span.SetAttributes(attribute.Bool("file.from-cache", false))

	content, sha, err := c.fetch(ctx, path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", "", err
	}

	cachedBytes, err := json.Marshal(cachedFile{Content: content, SHA: sha})
	if err != nil {
		log.Errorf("ghstore: failed to marshal file cache entry for %s: %s", path, err)
		return content, sha, nil
	}
	if err := c.cache.Set(cacheKey, cachedBytes, c.cacheExpireIn); err != nil {
		log.Errorf("ghstore: failed to set file cache for %s: %s", path, err)
	}

	return content, sha, nil
}

// fetch always hits the API, bypassing the read cache.
func (c *Client) fetch(ctx context.Context, path string) (string, string, error) {
	url := fmt.Sprintf(
		"%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, c.owner, c.repo, path, c.branch,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("get file %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Debugf("ghstore: file %s not found, treating as empty", path)
		return "", "", nil
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read file response %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("get file %s: status %d: %s", path, resp.StatusCode, respBytes)
	}

	var contents contentsResponse
	if err := json.Unmarshal(respBytes, &contents); err != nil {
		return "", "", fmt.Errorf("unmarshal file response %s: %w", path, err)
	}

	content, err := decodeContent(contents.Content)
	if err != nil {
		return "", "", fmt.Errorf("decode file content %s: %w", path, err)
	}

	return content, contents.SHA, nil
}

// Write commits new file content. It re-reads the current sha first, so a
// concurrent writer who finished earlier gets silently overwritten - accepted
// for the two-user usage this service has.
func (c *Client) Write(ctx context.Context, path, content, message string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ghstore.write")
	defer span.End()
	span.SetAttributes(attribute.String("file.path", path))

	if c.token == "" {
		span.SetStatus(codes.Error, "missing token")
		return ErrMissingToken
	}

	_, sha, err := c.fetch(ctx, path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("get current sha for %s: %w", path, err)
	}

	payload := writeRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		Branch:  c.branch,
		SHA:     sha,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal write payload for %s: %w", path, err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.countWrite(path, "error")
		return fmt.Errorf("put file %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBytes, _ := io.ReadAll(resp.Body)
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", resp.StatusCode))
		c.countWrite(path, strconv.Itoa(resp.StatusCode))
		return fmt.Errorf("put file %s: status %d: %s", path, resp.StatusCode, respBytes)
	}

	c.countWrite(path, "ok")
	c.cache.Del([]byte(cacheKeyPrefix + path))
	log.Debugf("ghstore: wrote %s [%s]", path, message)
	span.SetStatus(codes.Ok, "written")

	return nil
}

// CommitMessage builds the commit messages the planner uses,
// e.g. "update treinos 2024-05-05T12:00:00Z".
func CommitMessage(action string) string {
	return fmt.Sprintf("%s %s", action, pkg.UTCTimestamp(time.Now()))
}

func (c *Client) countWrite(path, status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.CounterStoreWrites.WithLabelValues(path, status).Inc()
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// the contents API wraps base64 payloads in newlines
func decodeContent(encoded string) (string, error) {
	encoded = strings.ReplaceAll(encoded, "\n", "")
	if encoded == "" {
		return "", nil
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
