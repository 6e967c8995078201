package model

import "fmt"

// ErrKind tags the recoverable failure modes the Keyring and its collaborators can
// surface to a caller. Callers branch on Kind, never on the wrapped message text.
type ErrKind string

const (
	ErrWalletLocked           ErrKind = "WalletLocked"
	ErrWrongPassword          ErrKind = "WrongPassword"
	ErrMnemonicInvalid        ErrKind = "MnemonicInvalid"
	ErrPathInvalid            ErrKind = "PathInvalid"
	ErrDerivationInvalid      ErrKind = "DerivationInvalid"
	ErrDerivationOutOfRange   ErrKind = "DerivationOutOfRange"
	ErrAddressChecksumMismatch ErrKind = "AddressChecksumMismatch"
	ErrAddressMalformed       ErrKind = "AddressMalformed"
	ErrTxRequestAmbiguous     ErrKind = "TxRequestAmbiguous"
	ErrSigningFailed          ErrKind = "SigningFailed"
	ErrNotAnOwner             ErrKind = "NotAnOwner"
	ErrThresholdNotMet        ErrKind = "ThresholdNotMet"
	ErrProposalTerminal       ErrKind = "ProposalTerminal"
	ErrVaultVersionUnsupported ErrKind = "VaultVersionUnsupported"
	ErrStorageUnavailable     ErrKind = "StorageUnavailable"
	ErrBroadcastFailed        ErrKind = "BroadcastFailed"
	ErrConfigOptionUnknown    ErrKind = "ConfigOptionUnknown"
)

// Error is the tagged error every user-reachable Keyring operation returns on failure.
// It wraps an underlying cause (often produced with github.com/pkg/errors at a
// collaborator boundary) without exposing that cause's text as the Kind itself.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, model.New(KindX, "")) style checks match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs a tagged error with no further message detail.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs a tagged error around an underlying cause.
func Wrap(kind ErrKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the ErrKind of err, or "" if err is not (or does not wrap) a *Error.
func KindOf(err error) ErrKind {
	var e *Error
	for err != nil {
		if as, ok := err.(*Error); ok {
			e = as
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return ""
	}
	return e.Kind
}
