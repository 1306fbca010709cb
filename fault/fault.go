// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	ApplicationError  GenericError
	ExistsError       GenericError
	ForkError         GenericError
	InvalidError      GenericError
	LengthError       GenericError
	LinkageError      GenericError
	NetworkError      GenericError
	NotFoundError     GenericError
	ProcessError      GenericError
	StorageError      GenericError
	VerificationError GenericError
)

// common errors - keep in alphabetic order
var (
	ErrAlreadyConfirmed     = ExistsError("relay hash already confirmed")
	ErrAlreadyInitialised   = ExistsError("already initialised")
	ErrAlreadyQueued        = ExistsError("relay hash already queued")
	ErrBadSignature         = VerificationError("block signature does not verify")
	ErrCertificateExists    = ExistsError("certificate file already exists")
	ErrCrisisMismatch       = InvalidError("crisis id mismatch")
	ErrDecryptionFailed     = ProcessError("decryption failed")
	ErrEncryptionFailed     = ProcessError("encryption failed")
	ErrForkDetected         = ForkError("fork detected")
	ErrInvalidBlock         = InvalidError("invalid block")
	ErrInvalidCount         = InvalidError("invalid count")
	ErrInvalidIPAddress     = InvalidError("invalid IP address")
	ErrInvalidKey           = InvalidError("invalid key")
	ErrInvalidLoggerChannel = InvalidError("invalid logger channel")
	ErrInvalidPayload       = InvalidError("invalid payload")
	ErrInvalidPortNumber    = InvalidError("invalid port number")
	ErrInvalidPriority      = InvalidError("invalid priority level")
	ErrInvalidStructPointer = InvalidError("invalid struct pointer")
	ErrInvalidTransaction   = InvalidError("invalid transaction")
	ErrInvalidURL           = InvalidError("invalid url")
	ErrKeyFileExists        = ExistsError("key file already exists")
	ErrListenDisabled       = InvalidError("no listen addresses")
	ErrMessageTooLong       = LengthError("message too long")
	ErrMissingTrustedKey    = NotFoundError("missing trusted public key")
	ErrNoAuthority          = NotFoundError("no authority configured")
	ErrNonContiguous        = LinkageError("block does not link to chain tip")
	ErrNotFound             = NotFoundError("not found")
	ErrNotInitialised       = NotFoundError("not initialised")
	ErrStorageCorrupt       = StorageError("persisted data is corrupt")
	ErrStorageReadOnly      = StorageError("storage is read only")
	ErrUnsupportedVersion   = InvalidError("unsupported payload version")
)

// the error interface methods
func (e GenericError) Error() string      { return string(e) }
func (e ApplicationError) Error() string  { return string(e) }
func (e ExistsError) Error() string       { return string(e) }
func (e ForkError) Error() string         { return string(e) }
func (e InvalidError) Error() string      { return string(e) }
func (e LengthError) Error() string       { return string(e) }
func (e LinkageError) Error() string      { return string(e) }
func (e NetworkError) Error() string      { return string(e) }
func (e NotFoundError) Error() string     { return string(e) }
func (e ProcessError) Error() string      { return string(e) }
func (e StorageError) Error() string      { return string(e) }
func (e VerificationError) Error() string { return string(e) }

// determine the class of an error
func IsErrApplication(e error) bool  { _, ok := e.(ApplicationError); return ok }
func IsErrExists(e error) bool       { _, ok := e.(ExistsError); return ok }
func IsErrFork(e error) bool         { _, ok := e.(ForkError); return ok }
func IsErrInvalid(e error) bool      { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool       { _, ok := e.(LengthError); return ok }
func IsErrLinkage(e error) bool      { _, ok := e.(LinkageError); return ok }
func IsErrNetwork(e error) bool      { _, ok := e.(NetworkError); return ok }
func IsErrNotFound(e error) bool     { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool      { _, ok := e.(ProcessError); return ok }
func IsErrStorage(e error) bool      { _, ok := e.(StorageError); return ok }
func IsErrVerification(e error) bool { _, ok := e.(VerificationError); return ok }
