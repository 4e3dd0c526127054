package domain

// Message is a recruiter message to a seeker about a job.
type Message struct {
	ID        string    `json:"_id"`
	Sender    Ref[User] `json:"senderId"`
	Receiver  Ref[User] `json:"receiverId"`
	Job       Ref[Job]  `json:"jobId"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

// MessageThread is the envelope of GET /api/messages/seeker/{receiverId}/{jobId}.
type MessageThread struct {
	Data []Message `json:"data"`
}

// SendMessageRequest is the body of POST /api/messages.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	JobID      string `json:"jobId"`
	Message    string `json:"message"`
}
