package bookings

import "github.com/google/uuid"

// AcquireHoldRequest is the wire shape for taking a seat hold.
type AcquireHoldRequest struct {
	SlotID  string `json:"slot_id" binding:"required,uuid"`
	Guests  int    `json:"guests" binding:"required,min=1,max=50"`
	OfferID string `json:"offer_id" binding:"omitempty,uuid"`
}

// ToAcquireRequest converts the wire shape to the service input.
func (r *AcquireHoldRequest) ToAcquireRequest() (AcquireRequest, error) {
	slotID, err := uuid.Parse(r.SlotID)
	if err != nil {
		return AcquireRequest{}, err
	}

	req := AcquireRequest{SlotID: slotID, Guests: r.Guests}
	if r.OfferID != "" {
		offerID, err := uuid.Parse(r.OfferID)
		if err != nil {
			return AcquireRequest{}, err
		}
		req.OfferID = &offerID
	}
	return req, nil
}
