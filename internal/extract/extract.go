// Package extract turns uploaded files into scannable plain text. Every
// failure mode is a skip, never an error: a file the adapter cannot read is
// reported with a reason and the request proceeds without its text.
package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// SkipReason classifies why a file yielded no text.
type SkipReason string

const (
	SkipTooLarge           SkipReason = "too_large"
	SkipUnsupportedFormat  SkipReason = "unsupported_format"
	SkipDecoderUnavailable SkipReason = "decoder_unavailable"
	SkipTimeout            SkipReason = "timeout"
	SkipReadError          SkipReason = "read_error"
)

// Result is the outcome of one extraction attempt. Exactly one of Text or
// (Skipped, Reason) is meaningful.
type Result struct {
	Text    string
	Skipped bool
	Reason  SkipReason
	Detail  string
}

func skipped(reason SkipReason, detail string) Result {
	return Result{Skipped: true, Reason: reason, Detail: detail}
}

// Decoder extracts plain text from the file at path. Decoders poll ctx at
// natural boundaries (rows, sheets, slides) and return ctx.Err() when the
// per-file budget runs out.
type Decoder func(ctx context.Context, path string) (string, error)

// Adapter routes files to format decoders by filename extension.
type Adapter struct {
	decoders map[string]Decoder
}

// New builds an adapter with the default decoder set.
func New() *Adapter {
	a := &Adapter{
		decoders: make(map[string]Decoder),
	}
	registerDefaults(a)
	return a
}

// Register installs a decoder for an extension (without the leading dot).
// A nil decoder marks the format as recognized but not currently decodable,
// which skips with decoder_unavailable instead of unsupported_format.
func (a *Adapter) Register(ext string, dec Decoder) {
	a.decoders[strings.ToLower(ext)] = dec
}

// Supported reports whether a decoder is installed and available for the
// file's extension.
func (a *Adapter) Supported(name string) bool {
	dec, ok := a.decoders[Ext(name)]
	return ok && dec != nil
}

// Ext returns the lowercased extension of name without the dot, or "" when
// the name has none.
func Ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Extract produces the scannable text of the file at path. Format dispatch
// goes by the declared name, not the on-disk path: some hosts store uploads
// as a bare id with no extension while the attachment still declares one.
// The caller bounds ctx with the per-file timeout and supplies the size cap
// from its config snapshot; the size gate runs before format dispatch so an
// oversized file is rejected for its size no matter the format.
func (a *Adapter) Extract(ctx context.Context, path, name string, maxBytes int64) Result {
	info, err := os.Stat(path)
	if err != nil {
		return skipped(SkipReadError, err.Error())
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return skipped(SkipTooLarge, fmt.Sprintf("%d bytes exceeds limit of %d", info.Size(), maxBytes))
	}

	dec, known := a.decoders[Ext(name)]
	if !known {
		return skipped(SkipUnsupportedFormat, fmt.Sprintf("no decoder for %q files", Ext(name)))
	}
	if dec == nil {
		return skipped(SkipDecoderUnavailable, fmt.Sprintf("%q decoding is not available in this build", Ext(name)))
	}

	text, err := dec(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return skipped(SkipTimeout, "extraction exceeded the per-file budget")
		}
		return skipped(SkipReadError, err.Error())
	}
	return Result{Text: text}
}
