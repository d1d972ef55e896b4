// Copyright 2025 Quillstore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/quillstore/quillstore/auth"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/extract"
	"github.com/quillstore/quillstore/storage"
)

// DefaultBucket is the blob-store bucket used when a request names none.
const DefaultBucket = "dataset"

// Request describes one file ingestion run.
type Request struct {
	// DatasetId is the target dataset.
	DatasetId string

	// Proof is the caller's identity proof.
	Proof auth.Proof

	// FileName is the original name of the uploaded file.
	FileName string

	// ContentType is the declared MIME type of the upload.
	ContentType string

	// Encoding is the declared character encoding, empty means utf-8.
	Encoding string

	// Bucket selects the blob-store bucket, empty means DefaultBucket.
	Bucket string

	// CollectionName names the created collection, empty means FileName.
	CollectionName string

	// CollectionMeta is caller-supplied collection metadata.
	CollectionMeta map[string]string

	// FileMeta is caller-supplied metadata stored on the file record.
	FileMeta map[string]string
}

// Pipeline runs a file upload through intake, authorization, extraction,
// durable upload and collection registration.
//
// Stages execute strictly in that order. A stage failure is terminal: the run
// returns a *StageError wrapping the cause and no later stage executes. The
// scratch file is deleted on every exit path; the durable file, once stored,
// is never deleted by the pipeline even when registration fails afterwards.
type Pipeline struct {
	scratch    *ScratchStore
	authorizer auth.Authorizer
	extractor  extract.Extractor
	files      storage.FileRepository
	registrar  Registrar
	logger     *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets a custom logger.
// Default is slog.Default().
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewPipeline creates an ingestion pipeline from its collaborators.
// All collaborators are required.
func NewPipeline(scratch *ScratchStore, authorizer auth.Authorizer, extractor extract.Extractor,
	files storage.FileRepository, registrar Registrar, opts ...PipelineOption) (*Pipeline, error) {
	if scratch == nil {
		return nil, ErrScratchStoreRequired
	}
	if authorizer == nil {
		return nil, ErrAuthorizerRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if files == nil {
		return nil, ErrFileRepositoryRequired
	}
	if registrar == nil {
		return nil, ErrRegistrarRequired
	}

	p := &Pipeline{
		scratch:    scratch,
		authorizer: authorizer,
		extractor:  extractor,
		files:      files,
		registrar:  registrar,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Ingest runs one upload through the pipeline and returns the registration
// result. On failure it returns a *StageError whose Unwrap exposes the cause.
func (p *Pipeline) Ingest(ctx context.Context, req Request, body io.Reader) (*core.CollectionResult, error) {
	state := stateIdle

	bucket := req.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}

	artifact, err := p.scratch.Acquire(ctx, body, req.FileName, req.ContentType, req.Encoding, bucket)
	if err != nil {
		return nil, &StageError{Stage: StageIntake, Err: err}
	}
	state = p.advance(state, stateIntaken, StageIntake)

	// The scratch file must not outlive the run, whichever way it ends.
	// ReleaseFiles tolerates an already-released path, so the early explicit
	// release after upload and this guard compose.
	defer p.scratch.ReleaseFiles(artifact.Path)

	identity, err := p.authorizer.Authorize(ctx, req.Proof, req.DatasetId, core.CapabilityWrite)
	if err != nil {
		return nil, &StageError{Stage: StageAuthorize, Err: err}
	}
	state = p.advance(state, stateAuthorized, StageAuthorize)

	assetID := core.NewAssetID()

	extracted, err := p.extractor.Extract(ctx, artifact.Path, artifact.Encoding, assetID)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}
	state = p.advance(state, stateExtracted, StageExtract)

	fileID, err := p.upload(ctx, artifact, req.FileMeta)
	if err != nil {
		return nil, &StageError{Stage: StageUpload, Err: err}
	}
	state = p.advance(state, stateUploaded, StageUpload)

	// The durable copy exists; the scratch copy is no longer needed.
	p.scratch.ReleaseFiles(artifact.Path)

	params := RegisterParams{
		Name:     req.CollectionName,
		Metadata: cloneMeta(req.CollectionMeta),
	}
	if params.Name == "" {
		params.Name = artifact.OriginalName
	}
	params.Metadata[core.MetaKeyRelatedAsset] = assetID

	result, err := p.registrar.Register(ctx, identity, extracted.RawText, fileID, params)
	if err != nil {
		// The stored file is intentionally left in place: its id was issued
		// and its lifetime is independent of this run.
		p.logger.Warn("registration failed after upload, stored file retained",
			"dataset", req.DatasetId, "file", fileID, "err", err)
		return nil, &StageError{Stage: StageRegister, Err: err}
	}
	state = p.advance(state, stateRegistered, StageRegister)

	p.logger.Info("ingestion complete",
		"dataset", req.DatasetId, "collection", result.CollectionId,
		"file", fileID, "asset", assetID, "chunks", len(result.InsertResults))

	return result, nil
}

// advance moves the run to the next state, logging the completed stage.
// States only ever advance one step at a time.
func (p *Pipeline) advance(from, next runState, completed Stage) runState {
	if next != from+1 {
		p.logger.Error("pipeline state skipped", "from", int(from), "to", int(next))
	}
	p.logger.Debug("stage complete", "stage", completed.String())
	return next
}

// upload streams the scratch file into the durable blob store.
func (p *Pipeline) upload(ctx context.Context, artifact *UploadedArtifact, meta map[string]string) (string, error) {
	f, err := os.Open(artifact.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	record := &core.FileRecord{
		Name:        artifact.OriginalName,
		ContentType: artifact.ContentType,
		Encoding:    artifact.Encoding,
		Metadata:    meta,
	}
	return p.files.Store(ctx, artifact.Bucket, f, record)
}

func cloneMeta(meta map[string]string) map[string]string {
	out := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	return out
}
