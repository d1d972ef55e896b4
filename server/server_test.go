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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstore/quillstore/ai/mock"
	"github.com/quillstore/quillstore/auth"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/extract"
	"github.com/quillstore/quillstore/ingestion"
	"github.com/quillstore/quillstore/storage/badger"
)

var testSecret = []byte("test-secret")

type serverFixture struct {
	handler   http.Handler
	datasetID string
	token     string
}

func setupServer(t *testing.T) *serverFixture {
	t.Helper()

	datasets, collections, files, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	dataset, err := datasets.AddDataset(context.Background(), &core.Dataset{
		TeamId: "team-1",
		Name:   "docs",
		Members: []core.Member{
			{MemberId: "member-1", Role: core.RoleOwner},
			{MemberId: "member-2", Role: core.RoleReader},
		},
	})
	require.NoError(t, err)

	authorizer, err := auth.NewTokenAuthorizer(datasets, testSecret)
	require.NoError(t, err)

	scratch, err := ingestion.NewScratchStore(t.TempDir(), 1<<20, nil)
	require.NoError(t, err)

	registrar, err := ingestion.NewCollectionRegistrar(collections, mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(registrar.Release)

	pipeline, err := ingestion.NewPipeline(scratch, authorizer,
		extract.NewLocalExtractor(nil), files, registrar)
	require.NoError(t, err)

	srv, err := New(pipeline, ":0")
	require.NoError(t, err)

	token, err := auth.MintToken(testSecret, "team-1", "member-1", time.Minute)
	require.NoError(t, err)

	return &serverFixture{
		handler:   srv.Routes(),
		datasetID: dataset.Id,
		token:     token,
	}
}

// multipartBody builds a multipart body with an optional data part followed by
// the file part.
func multipartBody(t *testing.T, sidecar, filename, contents string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if sidecar != "" {
		part, err := writer.CreateFormField("data")
		require.NoError(t, err)
		_, err = io.WriteString(part, sidecar)
		require.NoError(t, err)
	}

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, contents)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func (f *serverFixture) post(t *testing.T, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost,
		"/api/datasets/"+f.datasetID+"/collections/file", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestIngestFile_Success(t *testing.T) {
	fixture := setupServer(t)

	body, contentType := multipartBody(t, `{"name":"notes","metadata":{"origin":"test"}}`,
		"notes.txt", strings.Repeat("some searchable text. ", 30))
	rec := fixture.post(t, fixture.token, body, contentType)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		CollectionId string `json:"collectionId"`
		Results      []struct {
			ChunkId       uint64 `json:"chunkId"`
			Index         int    `json:"index"`
			TokenEstimate int    `json:"tokenEstimate"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CollectionId)
	assert.NotEmpty(t, resp.Results)
}

func TestIngestFile_DefaultsNameToFilename(t *testing.T) {
	fixture := setupServer(t)

	body, contentType := multipartBody(t, "", "plain.txt", "contents")
	rec := fixture.post(t, fixture.token, body, contentType)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestIngestFile_NoToken(t *testing.T) {
	fixture := setupServer(t)

	body, contentType := multipartBody(t, "", "a.txt", "contents")
	rec := fixture.post(t, "", body, contentType)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIngestFile_ReaderForbidden(t *testing.T) {
	fixture := setupServer(t)

	token, err := auth.MintToken(testSecret, "team-1", "member-2", time.Minute)
	require.NoError(t, err)

	body, contentType := multipartBody(t, "", "a.txt", "contents")
	rec := fixture.post(t, token, body, contentType)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIngestFile_UnknownDataset(t *testing.T) {
	fixture := setupServer(t)
	fixture.datasetID = "no-such-dataset"

	body, contentType := multipartBody(t, "", "a.txt", "contents")
	rec := fixture.post(t, fixture.token, body, contentType)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestFile_UnsupportedEncoding(t *testing.T) {
	fixture := setupServer(t)

	body, contentType := multipartBody(t, `{"encoding":"ebcdic"}`, "a.txt", "contents")
	rec := fixture.post(t, fixture.token, body, contentType)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestIngestFile_EmptyUpload(t *testing.T) {
	fixture := setupServer(t)

	body, contentType := multipartBody(t, "", "a.txt", "")
	rec := fixture.post(t, fixture.token, body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestFile_MissingFilePart(t *testing.T) {
	fixture := setupServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormField("data")
	require.NoError(t, err)
	_, err = io.WriteString(part, `{"name":"x"}`)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := fixture.post(t, fixture.token, &buf, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
