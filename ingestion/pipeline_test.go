package ingestion

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstore/quillstore/auth"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/extract"
	"github.com/quillstore/quillstore/storage"
	"github.com/quillstore/quillstore/storage/badger"
)

type fakeAuthorizer struct {
	calls    int
	err      error
	identity *core.CallerIdentity
}

func (f *fakeAuthorizer) Authorize(ctx context.Context, proof auth.Proof, datasetID string, capability core.Capability) (*core.CallerIdentity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

// countingFiles wraps a FileRepository and records Store activity.
type countingFiles struct {
	storage.FileRepository
	storeCalls int
	lastID     string
}

func (c *countingFiles) Store(ctx context.Context, bucket string, r io.Reader, record *core.FileRecord) (string, error) {
	c.storeCalls++
	id, err := c.FileRepository.Store(ctx, bucket, r, record)
	c.lastID = id
	return id, err
}

type fakeRegistrar struct {
	calls      int
	err        error
	lastParams RegisterParams
	lastFileID string
}

func (f *fakeRegistrar) Register(ctx context.Context, identity *core.CallerIdentity, rawText, fileID string, params RegisterParams) (*core.CollectionResult, error) {
	f.calls++
	f.lastParams = params
	f.lastFileID = fileID
	if f.err != nil {
		return nil, f.err
	}
	return &core.CollectionResult{CollectionId: "col-1"}, nil
}

type pipelineFixture struct {
	pipeline   *Pipeline
	scratchDir string
	authorizer *fakeAuthorizer
	files      *countingFiles
	registrar  *fakeRegistrar
}

func setupPipeline(t *testing.T, maxSize int64) *pipelineFixture {
	t.Helper()

	scratchDir := t.TempDir()
	scratch, err := NewScratchStore(scratchDir, maxSize, nil)
	require.NoError(t, err)

	_, _, fileRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	fixture := &pipelineFixture{
		scratchDir: scratchDir,
		authorizer: &fakeAuthorizer{identity: testIdentity()},
		files:      &countingFiles{FileRepository: fileRepo},
		registrar:  &fakeRegistrar{},
	}

	fixture.pipeline, err = NewPipeline(scratch, fixture.authorizer,
		extract.NewLocalExtractor(nil), fixture.files, fixture.registrar)
	require.NoError(t, err)

	return fixture
}

func assertScratchEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch files must not outlive the run")
}

func testRequest() Request {
	return Request{
		DatasetId:   "ds-1",
		Proof:       auth.Proof{Token: "tok"},
		FileName:    "report.txt",
		ContentType: "text/plain",
		Encoding:    "utf-8",
	}
}

func TestIngest_Success(t *testing.T) {
	fixture := setupPipeline(t, 0)

	result, err := fixture.pipeline.Ingest(context.Background(), testRequest(),
		strings.NewReader("quarterly report contents"))
	require.NoError(t, err)
	assert.Equal(t, "col-1", result.CollectionId)

	assert.Equal(t, 1, fixture.authorizer.calls)
	assert.Equal(t, 1, fixture.files.storeCalls)
	assert.Equal(t, 1, fixture.registrar.calls)

	// collection name defaults to the uploaded file name
	assert.Equal(t, "report.txt", fixture.registrar.lastParams.Name)
	// the correlation id generated for this run reaches registration
	assert.NotEmpty(t, fixture.registrar.lastParams.Metadata[core.MetaKeyRelatedAsset])
	assert.Equal(t, fixture.files.lastID, fixture.registrar.lastFileID)

	// the durable copy carries the upload metadata
	record, err := fixture.files.Get(context.Background(), fixture.files.lastID)
	require.NoError(t, err)
	assert.Equal(t, "report.txt", record.Name)
	assert.Equal(t, int64(len("quarterly report contents")), record.Size)

	assertScratchEmpty(t, fixture.scratchDir)
}

func TestIngest_ExplicitCollectionNameAndBucket(t *testing.T) {
	fixture := setupPipeline(t, 0)

	req := testRequest()
	req.CollectionName = "custom name"
	req.Bucket = "archive"
	req.CollectionMeta = map[string]string{"source": "upload"}

	_, err := fixture.pipeline.Ingest(context.Background(), req, strings.NewReader("contents"))
	require.NoError(t, err)

	assert.Equal(t, "custom name", fixture.registrar.lastParams.Name)
	assert.Equal(t, "upload", fixture.registrar.lastParams.Metadata["source"])

	record, err := fixture.files.Get(context.Background(), fixture.files.lastID)
	require.NoError(t, err)
	assert.Equal(t, "archive", record.Bucket)
}

func TestIngest_SizeLimitStopsBeforeAuthorization(t *testing.T) {
	fixture := setupPipeline(t, 8)

	_, err := fixture.pipeline.Ingest(context.Background(), testRequest(),
		strings.NewReader("this body is longer than eight bytes"))

	assert.ErrorIs(t, err, ErrSizeLimitExceeded)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageIntake, stageErr.Stage)

	assert.Zero(t, fixture.authorizer.calls)
	assert.Zero(t, fixture.files.storeCalls)
	assert.Zero(t, fixture.registrar.calls)
	assertScratchEmpty(t, fixture.scratchDir)
}

func TestIngest_ForbiddenCleansScratch(t *testing.T) {
	fixture := setupPipeline(t, 0)
	fixture.authorizer.err = auth.ErrForbidden

	_, err := fixture.pipeline.Ingest(context.Background(), testRequest(),
		strings.NewReader("contents"))

	assert.ErrorIs(t, err, auth.ErrForbidden)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageAuthorize, stageErr.Stage)

	assert.Zero(t, fixture.files.storeCalls)
	assert.Zero(t, fixture.registrar.calls)
	assertScratchEmpty(t, fixture.scratchDir)
}

func TestIngest_ExtractFailureStopsBeforeUpload(t *testing.T) {
	fixture := setupPipeline(t, 0)

	req := testRequest()
	req.Encoding = "ebcdic"

	_, err := fixture.pipeline.Ingest(context.Background(), req, strings.NewReader("contents"))

	assert.ErrorIs(t, err, extract.ErrUnsupportedEncoding)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageExtract, stageErr.Stage)

	assert.Zero(t, fixture.files.storeCalls)
	assert.Zero(t, fixture.registrar.calls)
	assertScratchEmpty(t, fixture.scratchDir)
}

func TestIngest_RegistrationFailureRetainsStoredFile(t *testing.T) {
	fixture := setupPipeline(t, 0)
	fixture.registrar.err = errors.New("index write failed")

	_, err := fixture.pipeline.Ingest(context.Background(), testRequest(),
		strings.NewReader("contents"))

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageRegister, stageErr.Stage)

	// the file was stored before registration failed and stays available
	assert.Equal(t, 1, fixture.files.storeCalls)
	_, err = fixture.files.Get(context.Background(), fixture.files.lastID)
	assert.NoError(t, err)

	assertScratchEmpty(t, fixture.scratchDir)
}

func TestIngest_StorageFailureCleansScratch(t *testing.T) {
	fixture := setupPipeline(t, 0)
	fixture.files.FileRepository = failingFiles{}

	_, err := fixture.pipeline.Ingest(context.Background(), testRequest(),
		strings.NewReader("contents"))

	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageUpload, stageErr.Stage)

	assert.Zero(t, fixture.registrar.calls)
	assertScratchEmpty(t, fixture.scratchDir)
}

type failingFiles struct {
	storage.FileRepository
}

func (failingFiles) Store(ctx context.Context, bucket string, r io.Reader, record *core.FileRecord) (string, error) {
	return "", storage.ErrStorageUnavailable
}

func TestNewPipeline_MissingDependencies(t *testing.T) {
	scratch, err := NewScratchStore(t.TempDir(), 0, nil)
	require.NoError(t, err)

	_, _, fileRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	authorizer := &fakeAuthorizer{}
	extractor := extract.NewLocalExtractor(nil)
	registrar := &fakeRegistrar{}

	_, err = NewPipeline(nil, authorizer, extractor, fileRepo, registrar)
	assert.ErrorIs(t, err, ErrScratchStoreRequired)
	_, err = NewPipeline(scratch, nil, extractor, fileRepo, registrar)
	assert.ErrorIs(t, err, ErrAuthorizerRequired)
	_, err = NewPipeline(scratch, authorizer, nil, fileRepo, registrar)
	assert.ErrorIs(t, err, ErrExtractorRequired)
	_, err = NewPipeline(scratch, authorizer, extractor, nil, registrar)
	assert.ErrorIs(t, err, ErrFileRepositoryRequired)
	_, err = NewPipeline(scratch, authorizer, extractor, fileRepo, nil)
	assert.ErrorIs(t, err, ErrRegistrarRequired)
}
