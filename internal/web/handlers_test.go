package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/branchtree/internal/config"
	"github.com/JonMunkholm/branchtree/internal/core"
	"github.com/JonMunkholm/branchtree/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportCSV = `State,Region,Branch Name,Opening Stock
Maharashtra,,,120
,MH1,MH1 Region Total,40
,MH1,Pune,10
Grand Total,,,500
`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg, err := config.LoadFrom(func(string) string { return "" })
	require.NoError(t, err)
	cfg.Rate.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	service, err := core.NewService(cfg)
	require.NoError(t, err)

	s := NewServer(service, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp
}

func TestConvert_JSONBody(t *testing.T) {
	s := newTestServer(t, nil)

	rec := serve(s, jsonRequest(t, "/api/convert", map[string]string{"csvContent": exportCSV}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Conversion-ID"))
	assert.Equal(t, "0", rec.Header().Get("X-Rows-Dropped"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	var doc core.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.TableData, 1)
	state := doc.TableData[0]
	assert.Equal(t, "maharashtra", state.ID)
	assert.Equal(t, int64(120), state.OpeningStock)
	require.Len(t, state.Regions, 1)
	require.Len(t, state.Regions[0].Branches, 1)
	assert.Equal(t, "pune", state.Regions[0].Branches[0].ID)
}

func TestConvert_RawCSVBody(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/convert?strategy=streaming", strings.NewReader(exportCSV))
	req.Header.Set("Content-Type", "text/csv; charset=utf-8")

	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":"pune"`)
}

func TestConvert_Download(t *testing.T) {
	s := newTestServer(t, nil)

	rec := serve(s, jsonRequest(t, "/api/convert?download=1", map[string]string{"csvContent": exportCSV}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename=converted.json`, rec.Header().Get("Content-Disposition"))
}

func TestConvert_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"invalid json", `{"csvContent":`, "REQ001"},
		{"not an object", `[1,2]`, "REQ001"},
		{"missing content", `{}`, "FILE004"},
		{"blank content", `{"csvContent":"  "}`, "FILE004"},
		{"malformed csv", `{"csvContent":"State,Region\nMaharashtra\n"}`, "FILE002"},
		{"unknown strategy", `{"csvContent":"State\nGoa\n","strategy":"guess"}`, "REQ002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := serve(s, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
			assert.NotContains(t, rec.Body.String(), "tableData")
		})
	}
}

func TestConvert_TooLarge(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Convert.MaxFileSize = 16 })

	rec := serve(s, jsonRequest(t, "/api/convert", map[string]string{"csvContent": exportCSV}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decodeError(t, rec).Code)
}

func TestConvert_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, nil)

	for _, target := range []string{"/api/convert", "/api/convert/upload"} {
		rec := serve(s, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, target)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "method not allowed", decodeError(t, rec).Error)
	}
}

func TestConvertUpload(t *testing.T) {
	s := newTestServer(t, nil)

	rec := serve(s, uploadRequest(t, "/api/convert/upload?download=true", "march-export.csv", exportCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, `attachment; filename=march-export.json`, rec.Header().Get("Content-Disposition"))

	var doc core.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.TableData, 1)
}

func TestConvertUpload_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("missing file field", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("strategy", "indexed"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/convert/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := serve(s, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FILE004", decodeError(t, rec).Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/convert/upload", strings.NewReader("x"))
		req.Header.Set("Content-Type", "text/plain")

		rec := serve(s, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "REQ001", decodeError(t, rec).Code)
	})

	t.Run("broken workbook", func(t *testing.T) {
		rec := serve(s, uploadRequest(t, "/api/convert/upload", "export.xlsx", "not a zip"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FILE002", decodeError(t, rec).Code)
	})
}

func TestSchemaStatusHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var schema struct {
		Hierarchy []string `json:"hierarchy"`
		Metrics   []struct {
			Column string `json:"column"`
			Key    string `json:"key"`
			Kind   string `json:"kind"`
		} `json:"metrics"`
		Strategy string `json:"defaultStrategy"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
	assert.Equal(t, []string{"State", "Region", "Branch Name"}, schema.Hierarchy)
	require.Len(t, schema.Metrics, 19)
	assert.Equal(t, "Opening Stock", schema.Metrics[0].Column)
	assert.Equal(t, "integer", schema.Metrics[0].Kind)
	assert.Equal(t, "indexed", schema.Strategy)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status core.LimiterStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 5, status.MaxConcurrent)
	assert.Equal(t, 5, status.Available)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, `<form id="convert"`)
	assert.Contains(t, body, "<li>Credit Pending (DDE &amp; Reco Stage)</li>")
	assert.Contains(t, body, "up to 20 MB")
}

func TestIndexPage_EscapesColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, indexPage(3<<20, []string{"<b>Stock</b>"}).Render(context.Background(), &buf))

	body := buf.String()
	assert.Contains(t, body, "up to 3 MB")
	assert.Contains(t, body, "<li>&lt;b&gt;Stock&lt;/b&gt;</li>")
	assert.NotContains(t, body, "<b>Stock</b>")
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		wantError   string
		wantMessage string
		wantCode    string
	}{
		{
			name:        "mapped error hides detail",
			err:         fmt.Errorf("parse error on line 3: %w", tabular.ErrMalformedInput),
			status:      http.StatusBadRequest,
			wantError:   "The file could not be read as a table",
			wantMessage: "The file could not be read as a table",
			wantCode:    "FILE002",
		},
		{
			name:        "internal error hides detail",
			err:         errors.New("template cache corrupted"),
			status:      http.StatusInternalServerError,
			wantError:   "An unexpected error occurred",
			wantMessage: "An unexpected error occurred",
			wantCode:    "ERR000",
		},
		{
			name:        "routing error",
			err:         errNotFound,
			status:      http.StatusNotFound,
			wantError:   "not found",
			wantMessage: "Not Found",
			wantCode:    "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondErrorStatus(rec, httptest.NewRequest(http.MethodPost, "/api/convert", nil), tt.err, tt.status)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotContains(t, rec.Body.String(), "line 3")
			assert.NotContains(t, rec.Body.String(), "cache")
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	s = newTestServer(t, func(c *config.Config) { c.Security.EnableCSP = false })
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Rate.Enabled = true
		c.Rate.RequestsPerMinute = 2
	})

	for i := 0; i < 2; i++ {
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrNoContent, http.StatusBadRequest},
		{core.ErrTooManyConversions, http.StatusServiceUnavailable},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
