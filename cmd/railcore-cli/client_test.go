package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "http://railcore.test"

func mockedClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(testBase+"/", "tok", 5*time.Second)
	httpmock.ActivateNonDefault(c.HTTP)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestClient_ExportChecklist(t *testing.T) {
	c := mockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/checklists/export",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "sub-1", body["submissionId"])
			assert.Equal(t, "Main Line", body["projectName"])
			resp := httpmock.NewBytesResponse(http.StatusOK, []byte("%PDF-1.3"))
			resp.Header.Set("Content-Type", "application/pdf")
			resp.Header.Set("Content-Disposition", `attachment; filename="checklist-x-1.pdf"`)
			return resp, nil
		})

	f, err := c.ExportChecklist(context.Background(), "sub-1", "Main Line")
	require.NoError(t, err)
	assert.Equal(t, "checklist-x-1.pdf", f.Filename)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, []byte("%PDF-1.3"), f.Data)
}

func TestClient_ExportPunchList_OmitsEmptyFormat(t *testing.T) {
	c := mockedClient(t)
	var got map[string]string
	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/punch/export",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewBytesResponse(http.StatusOK, []byte("PK")), nil
		})

	_, err := c.ExportPunchList(context.Background(), "p-1", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"projectId": "p-1"}, got)

	_, err = c.ExportPunchList(context.Background(), "p-1", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", got["format"])
}

func TestClient_APIErrorBody(t *testing.T) {
	c := mockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/reports/send",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error":"no distribution list configured"}`))

	err := c.SendReport(context.Background(), "p", "u", "2024-03-15", "A")
	require.Error(t, err)
	assert.Equal(t, "API error (400): no distribution list configured", err.Error())
}

func TestClient_APIErrorPlainBody(t *testing.T) {
	c := mockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBase+"/healthz",
		httpmock.NewStringResponder(http.StatusBadGateway, "upstream down\n"))

	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, "API error (502): upstream down", err.Error())
}

func TestClient_GenerateThenDownload(t *testing.T) {
	c := mockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/reports/generate",
		httpmock.NewStringResponder(http.StatusOK, `{"pdfUrl":"`+testBase+`/api/v1/files/abc.pdf"}`))
	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/files/abc.pdf",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
			resp := httpmock.NewBytesResponse(http.StatusOK, []byte("%PDF"))
			resp.Header.Set("Content-Disposition", `inline; filename="daily-report-2024-03-15.pdf"`)
			return resp, nil
		})

	u, err := c.GenerateReport(context.Background(), "r-1", "Main Line")
	require.NoError(t, err)
	assert.Equal(t, testBase+"/api/v1/files/abc.pdf", u)

	f, err := c.Download(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "daily-report-2024-03-15.pdf", f.Filename)
}

func TestClient_SendReport(t *testing.T) {
	c := mockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/reports/send",
		httpmock.NewStringResponder(http.StatusOK, `{"success":true}`))
	require.NoError(t, c.SendReport(context.Background(), "p", "u", "2024-03-15", "A"))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClient_Health(t *testing.T) {
	c := mockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBase+"/healthz",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"ok","version":"dev","db":"memory","cache":"down"}`))

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HealthResponse{Status: "ok", Version: "dev", DB: "memory", Cache: "down"}, h)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "abcd**mnop", maskToken("abcdxxmnop"))
}
