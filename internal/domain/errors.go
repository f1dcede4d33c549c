package domain

import "errors"

var (
	// ErrCollectionNotFound signals a name absent from a fresh list response.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrRecordNotFound signals zero results from an id-scoped get.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidDimension signals a query vector whose dimensionality does
	// not match the collection.
	ErrInvalidDimension = errors.New("invalid embedding dimension")
)
