// Package mint defines the error taxonomy shared across the mod
// integration engine.
package mint

import "fmt"

// Kind identifies which class of failure an Error represents.
type Kind int

const (
	UnknownGameInstallation Kind = iota
	IoError
	InvalidPak
	AssetBuildFailure
	AssetRegistryFailure
	ModReadFailure
	ModAssetReadFailure
	WriteModBundleFailed
	UninstallFailed
	InvalidZipFile
	LintError
	ProviderError
)

func (k Kind) String() string {
	switch k {
	case UnknownGameInstallation:
		return "UnknownGameInstallation"
	case IoError:
		return "IoError"
	case InvalidPak:
		return "InvalidPak"
	case AssetBuildFailure:
		return "AssetBuildFailure"
	case AssetRegistryFailure:
		return "AssetRegistryFailure"
	case ModReadFailure:
		return "ModReadFailure"
	case ModAssetReadFailure:
		return "ModAssetReadFailure"
	case WriteModBundleFailed:
		return "WriteModBundleFailed"
	case UninstallFailed:
		return "UninstallFailed"
	case InvalidZipFile:
		return "InvalidZipFile"
	case LintError:
		return "LintError"
	case ProviderError:
		return "ProviderError"
	default:
		return "Unknown"
	}
}

// Error is the single typed error used at every package boundary listed
// in the taxonomy. Internal helpers below that boundary use plain
// fmt.Errorf wrapping and surface as the Cause of one of these.
type Error struct {
	Kind    Kind
	Summary string
	Path    string
	ModID   string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Summary)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path=%s)", msg, e.Path)
	}
	if e.ModID != "" {
		msg = fmt.Sprintf("%s (mod=%s)", msg, e.ModID)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs a taxonomy error with no wrapped cause.
func New(kind Kind, summary string) *Error {
	return &Error{Kind: kind, Summary: summary}
}

// Wrap constructs a taxonomy error around an existing error.
func Wrap(kind Kind, summary string, cause error) *Error {
	return &Error{Kind: kind, Summary: summary, Cause: cause}
}

// WithPath returns a copy of e annotated with a filesystem path.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithModID returns a copy of e annotated with a mod identifier.
func (e *Error) WithModID(modID string) *Error {
	c := *e
	c.ModID = modID
	return &c
}
