// internal/services/catalog_client.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/javajoker/tecnova-catalog/internal/config"
	"github.com/javajoker/tecnova-catalog/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxErrorBody = 64 * 1024

// CatalogClient wraps the product backend's REST endpoints. It keeps no state
// between calls beyond its configuration.
type CatalogClient struct {
	cfg     config.RemoteConfig
	http    *http.Client
	limiter *rate.Limiter
	log     *logrus.Entry
}

// remoteErrorBody covers both the backend's ErrorResponse and the
// {"error": {...}} envelope used by some gateways.
type remoteErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewCatalogClient(cfg config.RemoteConfig, httpClient *http.Client, log *logrus.Entry) *CatalogClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	c := &CatalogClient{
		cfg:  cfg,
		http: httpClient,
		log:  log.WithField("component", "catalog_client"),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// List returns the whole collection, or the products matching filter when it
// is not empty. Matching is decided by the backend.
func (c *CatalogClient) List(ctx context.Context, filter string) ([]models.Product, error) {
	endpoint := c.cfg.BaseURL
	if filter != "" {
		endpoint += "?" + url.Values{c.cfg.SearchParam: {filter}}.Encode()
	}

	var products []models.Product
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, "", &products); err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

func (c *CatalogClient) Get(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := c.doJSON(ctx, http.MethodGet, c.productURL(id), nil, "", &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *CatalogClient) Search(ctx context.Context, term string) ([]models.Product, error) {
	endpoint := c.cfg.BaseURL + c.cfg.SearchPath + "?" + url.Values{c.cfg.SearchParam: {term}}.Encode()

	var products []models.Product
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, "", &products); err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

func (c *CatalogClient) Create(ctx context.Context, draft models.ProductDraft, images []models.ImageUpload) (*models.Product, error) {
	body, contentType, err := c.productBody(draft, c.cfg.CreateImagePart, images)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := c.doJSON(ctx, http.MethodPost, c.cfg.BaseURL, body, contentType, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update replaces every editable field of the product. newImages are appended
// to the images the backend already holds.
func (c *CatalogClient) Update(ctx context.Context, id int64, draft models.ProductDraft, newImages []models.ImageUpload) (*models.Product, error) {
	body, contentType, err := c.productBody(draft, c.cfg.UpdateImagePart, newImages)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := c.doJSON(ctx, http.MethodPut, c.productURL(id), body, contentType, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *CatalogClient) Delete(ctx context.Context, id int64) error {
	_, _, err := c.send(ctx, http.MethodDelete, c.productURL(id), nil, "")
	return err
}

// Import creates products in bulk. Draft images are source URLs which the
// backend downloads itself.
func (c *CatalogClient) Import(ctx context.Context, drafts []models.ProductDraft) ([]models.Product, error) {
	payload, err := json.Marshal(drafts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode import payload: %w", err)
	}

	var products []models.Product
	if err := c.doJSON(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.ImportPath, bytes.NewReader(payload), "application/json", &products); err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

// FetchImage downloads an image by absolute URL or bare file name.
func (c *CatalogClient) FetchImage(ctx context.Context, ref string) (*models.ImageUpload, error) {
	endpoint := c.ImageURL(ref)
	if endpoint == "" {
		return nil, newValidationError("imagem", "required", "imagem is required")
	}

	header, data, err := c.send(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	name := path.Base(endpoint)
	if u, err := url.Parse(endpoint); err == nil {
		name = path.Base(u.Path)
	}
	return &models.ImageUpload{Filename: name, ContentType: contentType, Data: data}, nil
}

// ImageURL resolves an image reference to an absolute URL. References that
// are already absolute are returned unchanged; bare file names are resolved
// against the backend's image endpoint.
func (c *CatalogClient) ImageURL(ref string) string {
	return ResolveImageURL(c.cfg, ref)
}

// ResolveImageURL is ImageURL without a client.
func ResolveImageURL(cfg config.RemoteConfig, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return cfg.BaseURL + cfg.ImagePath + "/" + url.PathEscape(strings.TrimLeft(ref, "/"))
}

func (c *CatalogClient) productURL(id int64) string {
	return c.cfg.BaseURL + "/" + strconv.FormatInt(id, 10)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// productBody encodes the draft as a JSON part followed by one file part per
// image.
func (c *CatalogClient) productBody(draft models.ProductDraft, imagePart string, images []models.ImageUpload) (io.Reader, string, error) {
	draft.Images = nil
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode product: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(c.cfg.ProductPart)))
	h.Set("Content-Type", "application/json")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create product part: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, "", fmt.Errorf("failed to write product part: %w", err)
	}

	for i, img := range images {
		filename := img.Filename
		if filename == "" {
			filename = fmt.Sprintf("image-%d", i+1)
		}
		contentType := img.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(img.Data)
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(imagePart), quoteEscaper.Replace(filename)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *CatalogClient) doJSON(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out interface{}) error {
	_, data, err := c.send(ctx, method, endpoint, body, contentType)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%s %s: empty response body", method, endpoint)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

// send performs one request under the configured timeout and returns the
// response headers and body of a 2xx answer.
func (c *CatalogClient) send(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (http.Header, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, &NetworkError{Op: method, URL: endpoint, Err: err}
		}
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	fields := logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"url":        endpoint,
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(fields).WithError(err).Warn("Catalog request failed")
		return nil, nil, &NetworkError{Op: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	fields["status"] = resp.StatusCode
	fields["duration"] = time.Since(start).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remoteErr := decodeRemoteError(resp)
		c.log.WithFields(fields).WithField("error", remoteErr.Message).Warn("Catalog request rejected")
		return nil, nil, remoteErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Op: method, URL: endpoint, Err: err}
	}

	c.log.WithFields(fields).Debug("Catalog request processed")
	return resp.Header, data, nil
}

func decodeRemoteError(resp *http.Response) *RemoteError {
	remoteErr := &RemoteError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body remoteErrorBody
	if len(data) > 0 && json.Unmarshal(data, &body) == nil {
		remoteErr.Code, remoteErr.Message = body.Code, body.Message
		if body.Error != nil {
			if remoteErr.Code == "" {
				remoteErr.Code = body.Error.Code
			}
			if remoteErr.Message == "" {
				remoteErr.Message = body.Error.Message
			}
		}
	}

	if remoteErr.Message == "" {
		remoteErr.Message = statusText(resp)
	}
	return remoteErr
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
