// Package jenkins talks to the Jenkins REST API: it addresses job and build resources
// and executes requests, turning every result into an Outcome.
package jenkins

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ihippik/jenkins-cli/config"
)

// Client represent API for interacting with Jenkins.
type Client struct {
	logger   *logrus.Entry
	basePath string
	user     string
	token    string
	client   *http.Client
}

// NewClient create new Jenkins API instance.
func NewClient(logger *logrus.Entry, cfg *config.JenkinsCfg) *Client {
	return &Client{
		logger:   logger,
		basePath: strings.TrimRight(cfg.URL, "/"),
		user:     cfg.User,
		token:    cfg.Token,
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: checkRedirect,
		},
	}
}

// maxRedirects matches the net/http default.
const maxRedirects = 10

// checkRedirect follows redirects of reads only. A 302 is a meaningful answer
// to trigger and stop, so writes get it back untouched.
func checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) > 0 && via[0].Method != http.MethodGet {
		return http.ErrUseLastResponse
	}

	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}

	return nil
}

// BaseURL of the server.
func (c *Client) BaseURL() string {
	return c.basePath
}

// AuthHeader returns the Basic authorization value, or false when user or token is missing.
func AuthHeader(user, token string) (string, bool) {
	if user == "" || token == "" {
		return "", false
	}

	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+token)), true
}

// Execute performs one request. It never fails: HTTP errors come back as their status,
// transport errors as status 0 with a diagnostic body.
func (c *Client) Execute(ctx context.Context, path, method string, form url.Values) Outcome {
	start := time.Now()
	out := c.do(ctx, path, method, form)

	c.logger.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  out.Status,
		"elapsed": time.Since(start).String(),
	}).Debugln("jenkins request")

	return out
}

func (c *Client) do(ctx context.Context, path, method string, form url.Values) Outcome {
	reqURL := c.basePath + "/" + strings.TrimLeft(path, "/")

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return Outcome{Body: fmt.Sprintf("Error: %v", err)}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if auth, ok := AuthHeader(c.user, c.token); ok {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Outcome{Body: diagnose(err)}
	}

	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Body: fmt.Sprintf("Error: read body: %v", err)}
	}

	return Outcome{Status: resp.StatusCode, Body: string(data)}
}

func diagnose(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("Connection error: timeout: %v", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Sprintf("Connection error: %v", urlErr.Err)
	}

	return fmt.Sprintf("Error: %v", err)
}
