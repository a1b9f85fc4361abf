package checkout

import "github.com/fullindescription/VL-rebrand/internal/model"

// Request is the body sent to the checkout service.
type Request struct {
	Sessions []SessionRequest `json:"sessions"`
}

// SessionRequest groups everything bought for one session.  Screenings
// list seats; events carry a ticket count.
type SessionRequest struct {
	SessionID uint64          `json:"sessionId"`
	Seats     []model.SeatRef `json:"seats"`
	Quantity  int             `json:"quantity,omitempty"`
}

// BuildRequest groups lines by session ID in order of first appearance.
// Seat lines add their seat; event lines add their quantity.
func BuildRequest(lines []model.CartLine) Request {
	req := Request{Sessions: []SessionRequest{}}
	index := make(map[uint64]int)
	for _, l := range lines {
		i, ok := index[l.SessionID]
		if !ok {
			i = len(req.Sessions)
			index[l.SessionID] = i
			req.Sessions = append(req.Sessions, SessionRequest{SessionID: l.SessionID, Seats: []model.SeatRef{}})
		}
		if ref, ok := l.SeatRef(); ok {
			req.Sessions[i].Seats = append(req.Sessions[i].Seats, ref)
			continue
		}
		req.Sessions[i].Quantity += l.Quantity
	}
	return req
}
