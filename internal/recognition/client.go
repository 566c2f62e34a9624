// Package recognition scores captured frames against the mission
// description, either through a remote vision model or a local oracle.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"dronesearch-sim/internal/scan"
)

// DefaultGeneralDescription is the contrast prompt sent next to the
// mission description.
const DefaultGeneralDescription = "a person"

// Client posts frames to a vision model server's /analyze endpoint.
type Client struct {
	URL      string
	Specific string
	General  string
	HTTP     *http.Client
}

// NewClient returns a client for the model server at baseURL.
func NewClient(baseURL, specific, general string, timeout time.Duration) *Client {
	if general == "" {
		general = DefaultGeneralDescription
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		URL:      strings.TrimRight(baseURL, "/"),
		Specific: specific,
		General:  general,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

type analyzeResponse struct {
	Confidence *float64 `json:"confidence"`
	Error      string   `json:"error"`
}

// Analyze implements scan.Recognizer.
func (c *Client) Analyze(ctx context.Context, f scan.Frame) (float64, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s_%s.png"`, f.DroneID, f.Target.ID))
	h.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(h)
	if err != nil {
		return 0, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(f.Image); err != nil {
		return 0, fmt.Errorf("write image data: %w", err)
	}
	if err := writer.WriteField("specific_description", c.Specific); err != nil {
		return 0, fmt.Errorf("write specific description: %w", err)
	}
	if err := writer.WriteField("general_description", c.General); err != nil {
		return 0, fmt.Errorf("write general description: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"/analyze", &buf)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bad status: %s, error: %s", resp.Status, bytes.TrimSpace(body))
	}

	var out analyzeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.Confidence == nil {
		return 0, fmt.Errorf("response has no confidence: %s", bytes.TrimSpace(body))
	}
	return *out.Confidence, nil
}
