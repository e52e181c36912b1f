package cdn

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/myinsta/portfolio-backend/config"
	"github.com/myinsta/portfolio-backend/internal/apperr"
	"github.com/myinsta/portfolio-backend/internal/upload/domain"
)

// Params never included in a Cloudinary signature.
var unsignedParams = map[string]bool{
	"file":          true,
	"api_key":       true,
	"resource_type": true,
	"cloud_name":    true,
}

// Cloudinary uploads to the image upload API. Unsigned mode is used when an
// upload preset is configured, signed mode otherwise.
type Cloudinary struct {
	cfg            config.CloudinaryConfig
	folder         string
	transformation string
	httpClient     *http.Client
	now            func() time.Time
}

func NewCloudinary(cfg config.CloudinaryConfig, upload config.UploadConfig) *Cloudinary {
	timeout := upload.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Cloudinary{
		cfg:            cfg,
		folder:         upload.Folder,
		transformation: upload.Transformation,
		httpClient:     &http.Client{Timeout: timeout},
		now:            time.Now,
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Cloudinary) Upload(ctx context.Context, f domain.File) (*domain.Result, error) {
	params, err := c.params()
	if err != nil {
		return nil, err
	}
	params["file"] = domain.DataURI(f)

	body, contentType, err := multipartBody(params)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	endpoint := strings.TrimRight(c.cfg.APIBase, "/") + "/v1_1/" + c.cfg.CloudName + "/image/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Upstream("Upload failed", err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Upstream("Upload failed", err.Error(), err)
	}

	var out cloudinaryResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		details := "Upload failed"
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			details = out.Error.Message
		}
		return nil, apperr.Upstream("Upload failed", details, fmt.Errorf("cloudinary status %d", resp.StatusCode))
	}
	if decodeErr != nil || out.SecureURL == "" {
		return nil, apperr.Upstream("Upload failed", "unexpected response from image CDN", decodeErr)
	}

	return &domain.Result{
		URL:         TransformURL(out.SecureURL, c.transformation),
		OriginalURL: out.SecureURL,
		PublicID:    out.PublicID,
		Width:       out.Width,
		Height:      out.Height,
	}, nil
}

// params returns the form fields for the configured mode, or a
// configuration error.
func (c *Cloudinary) params() (map[string]string, error) {
	if c.cfg.CloudName == "" {
		return nil, apperr.Configuration("Cloudinary cloud name not configured")
	}

	if c.cfg.UploadPreset != "" {
		return map[string]string{
			"upload_preset": c.cfg.UploadPreset,
			"folder":        c.folder,
		}, nil
	}

	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return nil, apperr.Configuration("Cloudinary API credentials not configured. Set CLOUDINARY_UPLOAD_PRESET for unsigned uploads or CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET for signed uploads.")
	}

	params := map[string]string{
		"folder":    c.folder,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	params["signature"] = Sign(params, c.cfg.APISecret)
	params["api_key"] = c.cfg.APIKey
	return params, nil
}

// Sign computes the Cloudinary request signature: hex SHA-1 of the sorted
// k=v pairs joined by "&" followed by the API secret.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if unsignedParams[k] || k == "signature" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// TransformURL inserts a transformation directive after /image/upload/.
func TransformURL(secureURL, transformation string) string {
	if transformation == "" {
		return secureURL
	}
	return strings.Replace(secureURL, "/image/upload/", "/image/upload/"+transformation+"/", 1)
}

func multipartBody(fields map[string]string) (io.Reader, string, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
