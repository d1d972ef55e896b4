package ingestion

import "fmt"

// Stage identifies one step of the ingestion pipeline.
type Stage int

const (
	// StageIntake writes the inbound stream to scratch storage.
	StageIntake Stage = iota + 1
	// StageAuthorize resolves and verifies the caller identity.
	StageAuthorize
	// StageExtract produces normalized text from the scratch file.
	StageExtract
	// StageUpload persists the raw file in the durable blob store.
	StageUpload
	// StageRegister creates the collection record and derived chunks.
	StageRegister
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageIntake:
		return "intake"
	case StageAuthorize:
		return "authorize"
	case StageExtract:
		return "extract"
	case StageUpload:
		return "upload"
	case StageRegister:
		return "register"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// runState is the explicit state of a single pipeline run. A run advances
// strictly Idle → Intaken → Authorized → Extracted → Uploaded → Registered;
// any stage failure is terminal for the run.
type runState int

const (
	stateIdle runState = iota
	stateIntaken
	stateAuthorized
	stateExtracted
	stateUploaded
	stateRegistered
)

// StageError reports which stage a run failed in. Unwrap exposes the original
// cause unchanged so callers can distinguish failure kinds with errors.Is.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("ingestion %s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the original cause.
func (e *StageError) Unwrap() error {
	return e.Err
}
