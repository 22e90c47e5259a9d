package domain

// Member is one connection in a room. Usernames are display names and need not be unique:
// the same user may be present through several connections.
type Member struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}

// RoomSummary lists who is in a live room.
type RoomSummary struct {
	RoomID  string   `json:"roomId"`
	Members []Member `json:"members"`
}

// RoomView is a read-only picture of a room's state at one instant.
type RoomView struct {
	RoomID     string          `json:"roomId"`
	Members    []Member        `json:"members"`
	LineCount  int             `json:"lineCount"`
	Authorship Ledger          `json:"authorship"`
	Activity   []ActivityEvent `json:"activity"`
}
