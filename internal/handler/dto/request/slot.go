package request

type CreateSlotRequest struct {
	Day       string `json:"day" binding:"required,max=64"`
	Time      string `json:"time" binding:"required,max=64"`
	SlotsLeft *int   `json:"slotsLeft" binding:"required,gte=0"`
}
