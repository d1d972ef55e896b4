// Package server exposes the ingestion pipeline over HTTP. Uploads are
// streamed multipart bodies; the optional "data" JSON part must precede the
// "file" part.
package server
