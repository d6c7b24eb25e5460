package transfer

import "encoding/json"

type ThreadsErrorResponse struct {
	Error struct {
		Message        string `json:"message"`
		Type           string `json:"type"`
		Code           int    `json:"code"`
		ErrorSubcode   int    `json:"error_subcode"`
		IsTransient    bool   `json:"is_transient"`
		ErrorUserTitle string `json:"error_user_title"`
		ErrorUserMsg   string `json:"error_user_msg"`
		FbtraceID      string `json:"fbtrace_id"`
	} `json:"error"`
}

// ParseThreadsError decodes the Graph API error envelope. ok is false when
// the body is not one.
func ParseThreadsError(body []byte) (ThreadsErrorResponse, bool) {
	var res ThreadsErrorResponse
	if err := json.Unmarshal(body, &res); err != nil || res.Error.Message == "" {
		return ThreadsErrorResponse{}, false
	}
	return res, true
}

type ThreadsPostResponse struct {
	ID string `json:"id"`
}
