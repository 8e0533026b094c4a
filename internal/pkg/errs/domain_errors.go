package errs

// Sentinels shared between the booking use cases and the presentation layers.
var (
	// Slot errors
	ErrSlotNotFound = New("slot not found")
	ErrSlotFull     = New("slot is fully booked")
	ErrStaleSlot    = New("slot changed since it was last observed")

	// Session errors
	ErrSessionNotFound     = New("session not found")
	ErrNotSelecting        = New("no slot selected")
	ErrSubmitInProgress    = New("submit already in progress")
	ErrStudentNameRequired = New("student name is required")

	// Validation errors
	ErrDomainValidation = New("domain validation error")

	// Operation errors
	ErrStoreOperationFailed = New("store operation failed")
)
