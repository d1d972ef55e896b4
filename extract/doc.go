// Package extract turns an uploaded scratch file into normalized text.
//
// The extractor decodes the file according to its declared encoding,
// canonicalizes line endings and tags inline asset references (markdown
// images) with the ingestion run's asset correlation id. It performs no
// uploads and no registrations.
package extract
