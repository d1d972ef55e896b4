package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// InlineAsset is a reference to an asset (such as an embedded image)
// discovered in the source content. Each asset is tagged with the run's
// correlation id so a later resolution pass can locate it.
type InlineAsset struct {
	Ref       string
	RelatedId string
}

// Result is the normalized text extracted from a scratch file.
type Result struct {
	RawText string
	Assets  []InlineAsset
}

// Extractor produces normalized text from a scratch file.
//
// Extraction is pure with respect to external state beyond reading the
// scratch file: it uploads and registers nothing.
type Extractor interface {
	// Extract reads the file at path, decodes it according to the declared
	// encoding and returns normalized text. Inline assets found in the
	// content are tagged with assetID.
	// Returns ErrUnreadableFile or ErrUnsupportedEncoding.
	Extract(ctx context.Context, path, declaredEncoding, assetID string) (*Result, error)
}

// markdown image references: ![alt](ref)
var inlineImagePattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)

// LocalExtractor implements Extractor for local text files.
type LocalExtractor struct {
	logger *slog.Logger
}

var _ Extractor = (*LocalExtractor)(nil)

// NewLocalExtractor creates an extractor for local scratch files.
func NewLocalExtractor(logger *slog.Logger) *LocalExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalExtractor{logger: logger.With("component", "extractor")}
}

// Extract reads and decodes the scratch file at path.
func (e *LocalExtractor) Extract(ctx context.Context, path, declaredEncoding, assetID string) (*Result, error) {
	decoder, err := decoderFor(declaredEncoding)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}

	var text string
	if decoder == nil {
		// utf-8: no transformation, but the bytes must be valid
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: invalid utf-8 content", ErrUnreadableFile)
		}
		text = string(data)
	} else {
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %w", ErrUnreadableFile, declaredEncoding, err)
		}
		text = string(decoded)
	}

	text = normalize(text)

	var assets []InlineAsset
	for _, match := range inlineImagePattern.FindAllStringSubmatch(text, -1) {
		assets = append(assets, InlineAsset{Ref: match[1], RelatedId: assetID})
	}

	e.logger.Debug("extracted text", "path", path, "encoding", declaredEncoding,
		"chars", len(text), "assets", len(assets))

	return &Result{RawText: text, Assets: assets}, nil
}

// decoderFor maps a declared encoding name to a decoder.
// A nil decoder with nil error means the content is already utf-8.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8", "7bit", "8bit", "binary", "us-ascii", "ascii":
		return nil, nil
	case "utf-16le", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case "utf-16be", "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder(), nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

// normalize strips BOM and NUL bytes and canonicalizes line endings.
func normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text
}
