// Package generr defines the error taxonomy shared by the code generation
// pipeline. Every failure that aborts a run is reported as a *Error carrying
// its Kind and the file or interface it originated from.
package generr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfigParse    Kind = "config parse"
	KindMissingField   Kind = "missing field"
	KindFileSystem     Kind = "file system"
	KindExternalTool   Kind = "external tool"
	KindTemplateRender Kind = "template render"
)

// Error is the single canonical error type returned at component boundaries.
type Error struct {
	Kind Kind
	// Subject is the file path, or "<interface> (<kind>)" for compiler failures.
	Subject string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + " error"
	if e.Subject != "" {
		msg += ": " + e.Subject
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// WithSubject returns a copy of e reported against subject.
func (e *Error) WithSubject(subject string) *Error {
	c := *e
	c.Subject = subject
	return &c
}

func ConfigParse(path string, err error) *Error {
	return &Error{Kind: KindConfigParse, Subject: path, Err: err}
}
func MissingField(path, field string) *Error {
	return &Error{Kind: KindMissingField, Subject: path, Detail: fmt.Sprintf("required field %q is missing", field)}
}

// InvalidField reports a required field that is present but unusable. It
// shares KindMissingField: the field is as good as absent.
func InvalidField(path, field, detail string) *Error {
	return &Error{Kind: KindMissingField, Subject: path, Detail: fmt.Sprintf("field %q %s", field, detail)}
}
func FileSystem(path string, err error) *Error {
	return &Error{Kind: KindFileSystem, Subject: path, Err: err}
}
func TemplateRender(path string, err error) *Error {
	return &Error{Kind: KindTemplateRender, Subject: path, Err: err}
}

// ExternalTool reports a compiler failure for one interface and artifact kind.
// stderr is appended to the message when non-empty.
func ExternalTool(iface, kind, stderr string, err error) *Error {
	return &Error{
		Kind:    KindExternalTool,
		Subject: fmt.Sprintf("%s (%s)", iface, kind),
		Detail:  stderr,
		Err:     err,
	}
}

// IsKind reports whether err, or any error it wraps, is a *Error of kind k.
func IsKind(err error, k Kind) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind == k
	}
	return false
}
