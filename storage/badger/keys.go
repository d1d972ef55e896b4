package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/quillstore/quillstore/core"
)

// Key prefixes for different data types
const (
	datasetPrefix      = "dsrec"
	collectionPrefix   = "colrec"
	collectionDSPrefix = "coldat"
	chunkPrefix        = "chkrec"
	chunkColPrefix     = "chkcol"
	chunkIDSeq         = "chkseq"
	fileRecordPrefix   = "filrec"
	fileDataPrefix     = "fildat"
	bucketUsagePrefix  = "filusg"
)

// makeDatasetKey generates a key for a dataset by id.
func makeDatasetKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", datasetPrefix, id))
}

// makeCollectionKey generates a key for a collection by id.
func makeCollectionKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionPrefix, id))
}

// makeCollectionDatasetKey generates a composite key for the
// collection-by-dataset index.
// Format: prefix:datasetID:collectionID
func makeCollectionDatasetKey(datasetID, collectionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", collectionDSPrefix, datasetID, collectionID))
}

// makeChunkKey generates a key for a chunk by id.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkCollectionKey generates a composite key for the chunk-by-collection
// index. The chunk index is encoded BigEndian so lexicographic iteration
// yields chunks in document order.
// Format: prefix:collectionID:index
func makeChunkCollectionKey(collectionID string, index int) []byte {
	prefix := []byte(chunkColPrefix + ":" + collectionID + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makePartialChunkCollectionKey generates the iteration prefix for all chunks
// of a collection.
func makePartialChunkCollectionKey(collectionID string) []byte {
	return []byte(chunkColPrefix + ":" + collectionID + ":")
}

// makeFileRecordKey generates a key for a file metadata record by id.
func makeFileRecordKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", fileRecordPrefix, id))
}

// makeFileDataKey generates a key for stored file bytes by id.
func makeFileDataKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", fileDataPrefix, id))
}

// makeBucketUsageKey generates a key tracking total stored bytes per bucket.
func makeBucketUsageKey(bucket string) []byte {
	return []byte(fmt.Sprintf("%s:%s", bucketUsagePrefix, bucket))
}
