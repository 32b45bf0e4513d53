package request

// SubmitWordRequest is the request body for submitting a word, to either the
// longest-word tracker or the current play session
type SubmitWordRequest struct {
	Word string `json:"word"`
}

// UpdateWordCountRequest is the request body for recording a finished game's word count.
// WordCount is a pointer so a missing field can be told apart from zero.
type UpdateWordCountRequest struct {
	WordCount *int `json:"word_count"`
}
