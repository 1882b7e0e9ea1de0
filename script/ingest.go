// Package script ingests play scripts from local files or HTTPS pages and
// normalizes them to plain text suitable for scene analysis and sequence
// prompts.
package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
)

const (
	// maxScriptSize bounds both file reads and HTTP bodies.
	maxScriptSize = 10 * 1024 * 1024

	defaultFetchTimeout = 30 * time.Second
)

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// Script is an ingested play script.
type Script struct {
	// Title is the page or file title, best effort.
	Title string `json:"title"`

	// Text is the script body as markdown-flavored plain text.
	Text string `json:"text"`

	// Source is the file path or URL the script came from.
	Source string `json:"source"`
}

// Ingestor loads scripts and converts HTML sources to markdown.
type Ingestor struct {
	httpClient *http.Client
	converter  *md.Converter
	logger     *slog.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithHTTPClient overrides the HTTP client used for URL sources.
func WithHTTPClient(client *http.Client) IngestorOption {
	return func(in *Ingestor) {
		in.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) IngestorOption {
	return func(in *Ingestor) {
		in.logger = logger
	}
}

// NewIngestor creates a script ingestor.
func NewIngestor(opts ...IngestorOption) *Ingestor {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	in := &Ingestor{
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
		converter:  converter,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Load ingests a script from a local path or an https:// URL.
func (in *Ingestor) Load(ctx context.Context, source string) (*Script, error) {
	if strings.HasPrefix(source, "https://") || strings.HasPrefix(source, "http://") {
		return in.LoadURL(ctx, source)
	}
	return in.LoadFile(source)
}

// LoadFile reads a script from disk. HTML files are converted to markdown;
// anything else is treated as plain text.
func (in *Ingestor) LoadFile(path string) (*Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	if info.Size() > maxScriptSize {
		return nil, fmt.Errorf("load script %s: file exceeds %d bytes", path, maxScriptSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}

	script := &Script{Source: path}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		text, err := in.converter.ConvertString(string(data))
		if err != nil {
			return nil, fmt.Errorf("load script %s: convert html: %w", path, err)
		}
		script.Text = cleanText(text)
	} else {
		script.Text = cleanText(string(data))
	}

	script.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	in.logger.Info("Script loaded", "source", path, "chars", len(script.Text))
	return script, nil
}

// LoadURL fetches a script page over HTTPS, extracts the readable article
// body and converts it to markdown. The URL is validated first; fetches to
// private or local addresses are refused.
func (in *Ingestor) LoadURL(ctx context.Context, rawURL string) (*Script, error) {
	if err := ValidateScriptURL(rawURL); err != nil {
		return nil, fmt.Errorf("load script %s: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "text/html, text/plain")

	resp, err := in.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load script %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptSize))
	if err != nil {
		return nil, fmt.Errorf("load script %s: read body: %w", rawURL, err)
	}

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("load script %s: extract article: %w", rawURL, err)
	}

	text, err := in.converter.ConvertString(article.Content)
	if err != nil {
		return nil, fmt.Errorf("load script %s: convert html: %w", rawURL, err)
	}

	script := &Script{
		Title:  article.Title,
		Text:   cleanText(text),
		Source: rawURL,
	}
	in.logger.Info("Script fetched", "source", rawURL, "title", script.Title, "chars", len(script.Text))
	return script, nil
}

// cleanText collapses runs of blank lines and trims the result.
func cleanText(text string) string {
	text = excessiveLinesRe.ReplaceAllString(text, "\n\n\n")
	return strings.TrimSpace(text)
}
