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


// Package ingestion orchestrates the file ingestion pipeline: intake to
// scratch storage, caller authorization, text extraction, durable upload and
// collection registration.
//
// Each run advances through the stages strictly in order and stops at the
// first failure. Failures carry the stage they occurred in via StageError
// while preserving the underlying cause for errors.Is checks. Scratch files
// never outlive their run; durable files, once stored, are never removed by
// the pipeline.
package ingestion
