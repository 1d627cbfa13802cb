package fsdbg

import (
	"errors"
	"fmt"
)

// A stable error category. The numeric values and their "E0nn" spellings
// never change between releases.
type Code int

const (
	CodeNone              Code = iota
	CodeNotFound               // E001: archive file not found
	CodeCorrupt                // E002: corrupt header or truncated stream
	CodeSymlinkBroken          // E003: symlink does not resolve inside the archive
	CodeMissingRequired        // E004: required path missing
	CodeIO                     // E005: read failure
	CodeExternalTool           // E006: collaborator tool missing or failed
	CodeParse                  // E007: collaborator output could not be parsed
	CodeVerificationFailed     // E008: a critical checklist requirement failed
	CodeUnsupported            // E009: unrecognized archive format
	CodeInvalidArgument        // E010: bad command line or option value
)

var codeNames = [...]string{
	CodeNone:               "none",
	CodeNotFound:           "not found",
	CodeCorrupt:            "corrupt archive",
	CodeSymlinkBroken:      "broken symlink",
	CodeMissingRequired:    "missing required",
	CodeIO:                 "i/o error",
	CodeExternalTool:       "external tool failed",
	CodeParse:              "parse error",
	CodeVerificationFailed: "verification failed",
	CodeUnsupported:        "unsupported format",
	CodeInvalidArgument:    "invalid argument",
}

// Returns the "E0nn" identifier.
func (c Code) String() string { return fmt.Sprintf("E%03d", int(c)) }

// A Code is itself an error so that errors.Is(err, CodeCorrupt) works on any
// [*Error] in the chain.
func (c Code) Error() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown error"
}

// An Error is a terminal failure of an fsdbg operation.
type Error struct {
	Code Code
	Op   string // Operation being performed, e.g. "open" or "decode"
	Path string // Archive path, if known
	Err  error  // Underlying cause, may be nil
}

func (e *Error) Error() string {
	var msg = e.Code.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	return "[" + e.Code.String() + "] " + msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Err}
}

// Construct an [*Error].
func NewError(code Code, op, path string, err error) *Error {
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

// Returns the [Code] of the first [*Error] in the chain, or [CodeNone] if
// err is nil. Errors from outside this module map to [CodeIO].
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return CodeIO
}
