package rsdata

// RsData is the response envelope every endpoint returns. ResultCode is
// the stable machine-readable contract ("200-1", "401-2", ...); Msg is
// display text only.
type RsData struct {
	ResultCode string `json:"resultCode"`
	Msg        string `json:"msg"`
	Data       any    `json:"data,omitempty"`
}

func New(resultCode, msg string, data any) RsData {
	return RsData{ResultCode: resultCode, Msg: msg, Data: data}
}

func Of(resultCode, msg string) RsData {
	return RsData{ResultCode: resultCode, Msg: msg}
}
