package request

// CreatePlayerRequest is the request body for creating a guest player
type CreatePlayerRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
}

// AnswerRequest is the request body for answering the current question
type AnswerRequest struct {
	Key string `json:"key" validate:"required"`
}

// HelpRequest is the request body for using a hint
type HelpRequest struct {
	Type string `json:"type" validate:"required"`
}
