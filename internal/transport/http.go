package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync/atomic"
)

// HTTPTransport sends the multipart upload over HTTP. The underlying client
// carries no timeout: cancellation comes only from the caller's context.
//
// The multipart form is assembled in memory before sending, so peak memory
// scales with the file size. The known body length is what makes every
// progress event length-computable.
type HTTPTransport struct {
	client *http.Client
	used   atomic.Bool
}

// NewHTTPTransport creates a transport for a single upload exchange.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{client: &http.Client{}}
}

// Send performs the exchange. It may be called at most once per transport.
func (t *HTTPTransport) Send(ctx context.Context, req *Request, progress ProgressFunc) Outcome {
	if !t.used.CompareAndSwap(false, true) {
		return Outcome{Kind: Errored, Err: errors.New("transport already used")}
	}

	body, contentType, err := encodeForm(req.File)
	if err != nil {
		return Outcome{Kind: Errored, Err: err}
	}

	total := int64(body.Len())
	reader := &progressReader{r: body, total: total, progress: progress}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.UploadURL(), reader)
	if err != nil {
		return Outcome{Kind: Errored, Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.AuthToken)
	httpReq.ContentLength = total

	resp, err := t.client.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return Outcome{Kind: Aborted}
		}
		return Outcome{Kind: Errored, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return Outcome{Kind: Aborted}
		}
		return Outcome{Kind: Errored, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return Outcome{Kind: Loaded, Response: decodeResponse(data)}
}

// encodeForm builds the multipart body: name and description both carry the
// file name, file carries the payload.
func encodeForm(file File) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if err := w.WriteField("name", file.Name); err != nil {
		return nil, "", fmt.Errorf("failed to encode form field: %w", err)
	}
	if err := w.WriteField("description", file.Name); err != nil {
		return nil, "", fmt.Errorf("failed to encode form field: %w", err)
	}

	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode form file: %w", err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return nil, "", fmt.Errorf("failed to read upload payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}

// decodeResponse maps a raw body to the parsed response. An empty body, a
// JSON null and any unparseable payload all come back as nil, which callers
// treat as an absent response.
func decodeResponse(data []byte) *Response {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var parsed *Response
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil
	}
	return parsed
}

// progressReader reports cumulative bytes handed to the HTTP client. The total
// is always known here since the form is buffered before sending.
type progressReader struct {
	r        io.Reader
	total    int64
	loaded   int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.progress != nil {
			p.progress(p.loaded, p.total)
		}
	}
	return n, err
}
