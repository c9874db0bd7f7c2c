package codec

type CreateRoomRequest struct {
	Name     string `json:"name"`
	Players  int    `json:"players"`
	Bots     int    `json:"bots"`
	ClientID string `json:"clientId"`
}

type JoinRoomRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
}

type LeaveRoomRequest struct {
	Code     string `json:"code"`
	ClientID string `json:"clientId"`
}

type RoomRequest struct {
	Code string `json:"code"`
}

type UpdateLobbyRequest struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
	Bots    int    `json:"bots"`
	Name    string `json:"name"`
}

type SetBidRequest struct {
	Code string `json:"code"`
	Bid  int    `json:"bid"`
}

type PlayCardRequest struct {
	Code string `json:"code"`
	Card string `json:"card"`
}

type RoomAssigned struct {
	Code string `json:"code"`
	Seat int    `json:"seat"`
}

type Left struct {
	Code string `json:"code"`
}

type StateMessage struct {
	Code  string    `json:"code"`
	Seat  *int      `json:"seat"`
	State StateView `json:"state"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
