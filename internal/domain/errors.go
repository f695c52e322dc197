package domain

import "errors"

var (
	// ErrBankInvalid is returned when a question source is not a non-empty JSON array.
	ErrBankInvalid = errors.New("question bank is empty or invalid")
	// ErrBankNotLoaded is returned when the bank is queried before Load.
	ErrBankNotLoaded = errors.New("question bank not loaded")
	// ErrNoSource indicates no question source candidate could be read.
	ErrNoSource = errors.New("no usable question source")
	// ErrQuestionNotFound indicates a requested question UID is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrStorageUnavailable indicates the progress store failed its capability probe.
	ErrStorageUnavailable = errors.New("progress storage unavailable")
)
