package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/signkit/signspace/pkg/engine"
	serrors "github.com/signkit/signspace/pkg/errors"
	"github.com/signkit/signspace/pkg/sio"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mgr := engine.NewManager(nil, nil, nil)
	srv := httptest.NewServer(newRouter(mgr))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/v1/generate", map[string]any{
		"region":          "france",
		"formality_level": 0.5,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var doc sio.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.ID == "" || len(doc.Zones) == 0 {
		t.Errorf("document incomplete: id %q, %d zones", doc.ID, len(doc.Zones))
	}
}

func TestGenerateEndpointMissingRegion(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/v1/generate", map[string]any{})
	if resp.StatusCode != http.StatusInternalServerError {
		// Missing region is a generation failure, not a client error
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/v1/analyze", map[string]any{
		"text": "pointe regard maison",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Components []json.RawMessage `json:"components"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Components) != 3 {
		t.Errorf("components = %d, want 3", len(body.Components))
	}
}

func TestValidateEndpoint(t *testing.T) {
	srv := testServer(t)

	// Generate a structure, then validate it through the API
	gen := postJSON(t, srv.URL+"/v1/generate", map[string]any{
		"region":          "france",
		"formality_level": 0.5,
	})
	var doc sio.Document
	if err := json.NewDecoder(gen.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}

	resp := postJSON(t, srv.URL+"/v1/validate", doc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Passed {
		t.Errorf("generated structure should pass validation: %+v", body)
	}
	if !body.Report.Valid {
		t.Errorf("integrity sweep should be clean: %+v", body.Report.Issues)
	}
}

func TestValidateEndpointBadDocument(t *testing.T) {
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/v1/validate", map[string]any{
		"id":    "x",
		"zones": []map[string]any{{"id": "z", "kind": "wormhole"}},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{serrors.New(serrors.ErrCodeInvalidInput, "bad"), http.StatusBadRequest},
		{serrors.New(serrors.ErrCodeInvalidContext, "bad"), http.StatusBadRequest},
		{serrors.New(serrors.ErrCodeNotFound, "gone"), http.StatusNotFound},
		{serrors.NewValidation(map[string]float64{"m": 0.1}, 0.85), http.StatusUnprocessableEntity},
		{serrors.New(serrors.ErrCodeInternal, "boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
