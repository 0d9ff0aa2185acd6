package respond

// RoomRespond 房间列表条目
type RoomRespond struct {
	RoomID  string   `json:"room_id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}
