package llm

import "encoding/json"

// chatResponse models the part of a Chat Completions response the broker reads.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnswerContent returns choices[0].message.content from a raw Chat Completions
// response body. It reports false when the body is not JSON or carries no content.
func AnswerContent(body []byte) (string, bool) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", false
	}
	return *resp.Choices[0].Message.Content, true
}
