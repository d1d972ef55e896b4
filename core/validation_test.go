package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDataset() *Dataset {
	return &Dataset{
		TeamId: "team-1",
		Name:   "docs",
		Members: []Member{
			{MemberId: "alice", Role: RoleOwner},
		},
	}
}

func TestValidateDataset(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateDataset(validDataset()))
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDataset(nil), ErrInvalidDataset)
	})

	t.Run("empty name", func(t *testing.T) {
		d := validDataset()
		d.Name = ""
		err := ValidateDataset(d)
		assert.ErrorIs(t, err, ErrInvalidDataset)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("empty team", func(t *testing.T) {
		d := validDataset()
		d.TeamId = ""
		assert.ErrorIs(t, ValidateDataset(d), ErrEmptyTeam)
	})

	t.Run("bad member role", func(t *testing.T) {
		d := validDataset()
		d.Members[0].Role = Role(99)
		assert.ErrorIs(t, ValidateDataset(d), ErrInvalidRole)
	})
}

func TestValidateCollection(t *testing.T) {
	valid := func() *Collection {
		return &Collection{
			DatasetId: "ds-1",
			Name:      "report.md",
			Type:      CollectionTypeFile,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateCollection(valid()))
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, ValidateCollection(nil), ErrInvalidCollection)
	})

	t.Run("empty name", func(t *testing.T) {
		c := valid()
		c.Name = ""
		assert.ErrorIs(t, ValidateCollection(c), ErrEmptyName)
	})

	t.Run("missing dataset", func(t *testing.T) {
		c := valid()
		c.DatasetId = ""
		assert.ErrorIs(t, ValidateCollection(c), ErrInvalidCollection)
	})

	t.Run("bad type", func(t *testing.T) {
		c := valid()
		c.Type = CollectionType(7)
		assert.ErrorIs(t, ValidateCollection(c), ErrInvalidCollectionType)
	})
}

func TestValidateChunk(t *testing.T) {
	valid := func() *Chunk {
		return &Chunk{CollectionId: "col-1", Index: 0, Contents: "text"}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateChunk(valid()))
	})

	t.Run("empty contents", func(t *testing.T) {
		c := valid()
		c.Contents = ""
		assert.ErrorIs(t, ValidateChunk(c), ErrEmptyContent)
	})

	t.Run("negative index", func(t *testing.T) {
		c := valid()
		c.Index = -1
		assert.ErrorIs(t, ValidateChunk(c), ErrInvalidChunk)
	})
}

func TestValidateFileRecord(t *testing.T) {
	valid := func() *FileRecord {
		return &FileRecord{Bucket: "dataset", Name: "report.md", Size: 12}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateFileRecord(valid()))
	})

	t.Run("empty bucket", func(t *testing.T) {
		r := valid()
		r.Bucket = ""
		assert.ErrorIs(t, ValidateFileRecord(r), ErrEmptyBucket)
	})

	t.Run("negative size", func(t *testing.T) {
		r := valid()
		r.Size = -1
		assert.ErrorIs(t, ValidateFileRecord(r), ErrNegativeSize)
	})
}
