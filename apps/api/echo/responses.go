package echoapi

// Response is the envelope wrapping every API payload.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

func newResponse(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func newErrorResponse(message string, err interface{}) Response {
	return Response{Success: false, Message: message, Error: err}
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user,omitempty"`
}
