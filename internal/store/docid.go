// Package store resolves gita's local paths and validates remote document identifiers.
package store

import (
	"errors"
	"regexp"
)

// Identifier validation errors.
var (
	// ErrInvalidDocumentID indicates a document ID cannot be used as a single path segment.
	ErrInvalidDocumentID = errors.New("invalid document ID: must be 1-1500 characters of letters, digits, '_' or '-'")

	// ErrInvalidCollection indicates a collection name is malformed.
	ErrInvalidCollection = errors.New("invalid collection: must be lowercase letters, digits or '_', starting with a letter")

	// ErrReservedDocumentID indicates the ID is reserved by the document store.
	ErrReservedDocumentID = errors.New("reserved document ID: must not match __.*__")
)

// maxDocumentIDLen is the store's limit on a document ID.
const maxDocumentIDLen = 1500

// documentIDRegex keeps IDs to a single URL-safe path segment.
var documentIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// reservedIDRegex matches IDs the document store reserves for itself.
var reservedIDRegex = regexp.MustCompile(`^__.*__$`)

var collectionRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// ValidateDocumentID validates a document ID before it is placed in a request path.
func ValidateDocumentID(id string) error {
	if len(id) > maxDocumentIDLen || !documentIDRegex.MatchString(id) {
		return ErrInvalidDocumentID
	}
	if reservedIDRegex.MatchString(id) {
		return ErrReservedDocumentID
	}
	return nil
}

// ValidateCollection validates a collection name.
func ValidateCollection(name string) error {
	if !collectionRegex.MatchString(name) {
		return ErrInvalidCollection
	}
	return nil
}
