package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a unique identifier for sequence-allocated entities such as chunks.
type ID uint64

// DigestFromContent generates a deterministic content digest using BLAKE2b hashing.
// Identical content always produces an identical digest.
func DigestFromContent(data []byte) string {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NewAssetID generates a fresh asset correlation id. It is created once per
// ingestion run and binds inline assets discovered during extraction to the
// collection record eventually stored for that run.
func NewAssetID() string {
	return uuid.NewString()
}

// NewRecordID generates a fresh identifier for datasets, collections and files.
func NewRecordID() string {
	return uuid.NewString()
}

// Role describes what a dataset member is allowed to do.
type Role int

const (
	// RoleOwner can read, write and administer the dataset.
	RoleOwner Role = iota + 1
	// RoleWriter can read and write collections in the dataset.
	RoleWriter
	// RoleReader can only read.
	RoleReader
)

// Capability is the access level required for an operation.
type Capability int

const (
	// CapabilityRead is required for read-only operations.
	CapabilityRead Capability = iota + 1
	// CapabilityWrite is required for operations that create or modify state.
	CapabilityWrite
)

// Allows reports whether the role grants the given capability.
func (r Role) Allows(c Capability) bool {
	switch c {
	case CapabilityRead:
		return r == RoleOwner || r == RoleWriter || r == RoleReader
	case CapabilityWrite:
		return r == RoleOwner || r == RoleWriter
	default:
		return false
	}
}

// Member associates a team member with a role on a dataset.
type Member struct {
	MemberId string
	Role     Role
}

// Dataset is the parent container that collections are registered against.
type Dataset struct {
	Id         string
	TeamId     string
	Name       string
	Members    []Member
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// RoleOf returns the role of the given member, or 0 if they are not a member.
func (d *Dataset) RoleOf(memberID string) Role {
	for _, m := range d.Members {
		if m.MemberId == memberID {
			return m.Role
		}
	}
	return 0
}

// CallerIdentity is the resolved identity of the caller for a single
// ingestion run. It must be obtained before any persistence step executes.
type CallerIdentity struct {
	TeamId   string
	MemberId string
	Dataset  *Dataset
}

// CollectionType marks the origin of a collection.
type CollectionType int

const (
	// CollectionTypeFile marks a collection created from an ingested file.
	CollectionTypeFile CollectionType = iota + 1
)

// MetaKeyRelatedAsset is the collection metadata key holding the asset
// correlation id generated during ingestion.
const MetaKeyRelatedAsset = "relatedAssetId"

// Collection is the logical unit registered against a dataset. It references
// the durable file it was derived from and carries caller-supplied metadata
// plus the asset correlation id of its ingestion run.
type Collection struct {
	Id         string
	DatasetId  string
	TeamId     string
	MemberId   string
	Name       string
	Type       CollectionType
	FileId     string
	Metadata   map[string]string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Chunk is a derived indexable slice of a collection's text.
type Chunk struct {
	Id           ID
	CollectionId string
	Index        int
	Contents     string
	Vector       []float32
	InsertedAt   time.Time
}

// FileRecord describes a durably stored file. Its lifetime is independent of
// the ingestion run that created it.
type FileRecord struct {
	Id          string
	Bucket      string
	Name        string
	ContentType string
	Encoding    string
	Size        int64
	Digest      string
	Metadata    map[string]string
	InsertedAt  time.Time
}

// InsertResult reports the outcome of inserting a single derived chunk.
type InsertResult struct {
	ChunkId       ID
	Index         int
	TokenEstimate int
}

// CollectionResult is the terminal success output of an ingestion run.
type CollectionResult struct {
	CollectionId  string
	InsertResults []InsertResult
}
