package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/inkpost/imgup/internal/adapter"
	"github.com/inkpost/imgup/internal/config"
	"github.com/inkpost/imgup/internal/storage"
	"github.com/inkpost/imgup/internal/transport"
)

func testServer(t *testing.T, authToken string) *httptest.Server {
	t.Helper()

	provider := storage.NewLocalProvider()
	if err := provider.Configure(map[string]any{"dir": t.TempDir()}); err != nil {
		t.Fatalf("Failed to configure storage: %v", err)
	}

	srv := New(Options{
		API:       "images",
		AuthToken: authToken,
		Store:     provider,
		Logger:    zerolog.Nop(),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, fileContent string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field %s: %v", k, err)
		}
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := io.Copy(part, strings.NewReader(fileContent)); err != nil {
			t.Fatalf("Failed to write file content: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestUploadAndFetch(t *testing.T) {
	ts := testServer(t, "secret")

	body, contentType := multipartBody(t, map[string]string{
		"name":        "cat.png",
		"description": "cat.png",
	}, "file", "cat.png", "image bytes")

	req, _ := http.NewRequest("POST", ts.URL+"/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer secret")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Upload request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var payload struct {
		ImageID string `json:"imageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if payload.ImageID == "" {
		t.Fatal("Expected a non-empty imageId")
	}

	fetched, err := http.Get(ts.URL + "/images/" + payload.ImageID)
	if err != nil {
		t.Fatalf("Fetch request failed: %v", err)
	}
	defer fetched.Body.Close()

	if fetched.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 on fetch, got %d", fetched.StatusCode)
	}
	if ct := fetched.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected Content-Type image/png, got %s", ct)
	}
	content, _ := io.ReadAll(fetched.Body)
	if string(content) != "image bytes" {
		t.Errorf("Expected fetched content 'image bytes', got %q", string(content))
	}
}

func TestUpload_Unauthorized(t *testing.T) {
	ts := testServer(t, "secret")

	body, contentType := multipartBody(t, nil, "file", "cat.png", "image bytes")

	req, _ := http.NewRequest("POST", ts.URL+"/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer wrong")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Upload request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", resp.StatusCode)
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if payload.Error.Message == "" {
		t.Error("Expected an error message in the response body")
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	ts := testServer(t, "")

	body, contentType := multipartBody(t, map[string]string{"name": "cat.png"}, "", "", "")

	req, _ := http.NewRequest("POST", ts.URL+"/images", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Upload request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestFetch_Missing(t *testing.T) {
	ts := testServer(t, "")

	resp, err := http.Get(ts.URL + "/images/nope.png")
	if err != nil {
		t.Fatalf("Fetch request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}
}

// endToEndLoader feeds a fixed payload into the adapter.
type endToEndLoader struct {
	name    string
	content string
	updates int
}

func (l *endToEndLoader) File(_ context.Context) (transport.File, error) {
	return transport.File{
		Name:   l.name,
		Reader: strings.NewReader(l.content),
		Size:   int64(len(l.content)),
	}, nil
}

func (l *endToEndLoader) SetProgress(uploaded, total int64) {
	l.updates++
}

func TestEndToEnd_AdapterAgainstBackend(t *testing.T) {
	ts := testServer(t, "secret")

	cfg := &config.Config{
		BaseAPIURL: ts.URL,
		API:        "images",
		Tokens:     config.StaticToken("secret"),
	}

	factory, err := adapter.Install(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	loader := &endToEndLoader{name: "cat.png", content: "image bytes"}
	result, err := factory.NewAdapter(loader).Upload(context.Background())
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if !strings.HasPrefix(result.Default, ts.URL+"/images/") {
		t.Fatalf("Expected result under %s/images/, got %s", ts.URL, result.Default)
	}
	if loader.updates == 0 {
		t.Error("Expected at least one progress update")
	}

	fetched, err := http.Get(result.Default)
	if err != nil {
		t.Fatalf("Fetch of uploaded image failed: %v", err)
	}
	defer fetched.Body.Close()

	content, _ := io.ReadAll(fetched.Body)
	if string(content) != "image bytes" {
		t.Errorf("Expected round-tripped content 'image bytes', got %q", string(content))
	}
}

func TestEndToEnd_WrongToken(t *testing.T) {
	ts := testServer(t, "secret")

	cfg := &config.Config{
		BaseAPIURL: ts.URL,
		API:        "images",
		Tokens:     config.StaticToken("wrong"),
	}

	factory, err := adapter.Install(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	loader := &endToEndLoader{name: "cat.png", content: "image bytes"}
	_, err = factory.NewAdapter(loader).Upload(context.Background())
	if err == nil {
		t.Fatal("Expected the upload to be rejected")
	}
	// The backend's message travels through to the caller.
	if !strings.Contains(err.Error(), "authorization") {
		t.Errorf("Expected the backend's message, got %q", err.Error())
	}
}
