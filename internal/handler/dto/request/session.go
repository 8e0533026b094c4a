package request

type SelectSlotRequest struct {
	SlotID string `json:"slotId" binding:"required"`
}

type SetStudentNameRequest struct {
	StudentName string `json:"studentName" binding:"max=100"`
}

// SubmitRequest falls back to the name stored on the session when StudentName is empty.
type SubmitRequest struct {
	StudentName string `json:"studentName" binding:"max=100"`
}
