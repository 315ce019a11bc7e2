// Package media classifies files by extension and derives output paths.
//
// Every supported extension maps to exactly one Kind. Unknown extensions are
// reported as ErrUnknownExtension rather than guessed, so callers can reject a
// job before any subprocess is started. The package also carries the
// conversion targets offered for each kind and the naming conventions used for
// derived outputs (muted copies, resized images, compressed media).
package media
