// Package repository talks to the Dataverse native API.
//
// Every call is a single attempt: a call succeeds only when the service answers with the expected
// status code, any other answer is returned as a remote error carrying the raw response body.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/dvpublish/pkg/publish/model"
)

// APIKeyHeader carries the API key of every request.
const APIKeyHeader = "X-Dataverse-key"

// UploadFileName is the name the archive is uploaded under.
const UploadFileName = "data.zip"

// Config holds the connection settings of a Client.
type Config struct {
	// BaseURL is the address of the service, e.g. https://demo.dataverse.org.
	BaseURL string
	APIKey  string
	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration
}

// Client is a Dataverse API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(c *Client)

// WithHTTPClient replaces the http client used by the Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New returns a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, model.NewError(model.KindConfiguration, "server url must be set")
	}

	if cfg.APIKey == "" {
		return nil, model.NewError(model.KindConfiguration, "api key must be set")
	}

	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, model.WrapError(model.KindConfiguration, err, "invalid server url")
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/api/v1/" + path
}

type createResponse struct {
	Status string `json:"status"`
	Data   struct {
		ID           int64  `json:"id"`
		PersistentID string `json:"persistentId"`
	} `json:"data"`
}

// CreateRecord creates a dataset holding record in the collection parent and returns its persistent identifier.
func (c *Client) CreateRecord(ctx context.Context, parent string, record []byte) (string, error) {
	if parent == "" {
		return "", model.NewError(model.KindConfiguration, "parent collection must be set")
	}

	endpoint := c.endpoint("dataverses/" + url.PathEscape(parent) + "/datasets")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(record))
	if err != nil {
		return "", errors.Wrap(err, "unable to create request")
	}

	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, http.StatusCreated, "could not create dataset")
	if err != nil {
		return "", err
	}

	var resp createResponse

	err = json.Unmarshal(body, &resp)
	if err != nil {
		return "", model.WrapError(model.KindRemote, err, "unable to decode create dataset response")
	}

	if resp.Data.PersistentID == "" {
		return "", model.NewError(model.KindRemote, "create dataset response has no persistent id: %s", body)
	}

	return resp.Data.PersistentID, nil
}

// UploadFile attaches the file at path to the dataset identified by persistentID.
func (c *Client) UploadFile(ctx context.Context, persistentID, path string) error {
	if persistentID == "" {
		return model.NewError(model.KindInput, "persistent id cannot be empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return model.WrapError(model.KindIO, err, "missing archive at path "+path)
	}

	query := url.Values{}
	query.Set("persistentId", persistentID)
	endpoint := c.endpoint("datasets/:persistentId/add") + "?" + query.Encode()

	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)
	errGrp, gCtx := errgroup.WithContext(ctx)

	req, err := http.NewRequestWithContext(gCtx, http.MethodPost, endpoint, pipeReader)
	if err != nil {
		file.Close()

		return errors.Wrap(err, "unable to create request")
	}

	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	var writeErr error

	// The form is streamed from disk, the archive is never loaded in memory.
	errGrp.Go(func() error {
		defer file.Close()

		err := writeForm(form, file)
		pipeWriter.CloseWithError(err)

		// A closed pipe means the request ended first, its own error is reported.
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			writeErr = model.WrapError(model.KindIO, err, "unable to read archive "+path)

			return writeErr
		}

		return nil
	})

	errGrp.Go(func() error {
		_, err := c.do(req, http.StatusOK, "could not upload zipfile to dataset")
		pipeReader.CloseWithError(io.ErrClosedPipe)

		return err
	})

	err = errGrp.Wait()
	if writeErr != nil {
		return writeErr
	}

	return err
}

func writeForm(form *multipart.Writer, file io.Reader) error {
	part, err := form.CreateFormFile("file", UploadFileName)
	if err != nil {
		return err
	}

	_, err = io.Copy(part, file)
	if err != nil {
		return err
	}

	return form.Close()
}

// do sends req and returns the response body when the status is expected.
func (c *Client) do(req *http.Request, expected int, message string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.WrapError(model.KindRemote, err, message)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)

		return nil, model.NewError(model.KindRemote, "%s: status %d: %s", message, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.WrapError(model.KindRemote, err, fmt.Sprintf("%s: unable to read response", message))
	}

	return body, nil
}
