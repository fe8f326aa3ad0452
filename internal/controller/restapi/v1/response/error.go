package response

type Error struct {
	Error string `json:"error" example:"message"`
}

type Message struct {
	Message string `json:"message" example:"Submission saved"`
}
