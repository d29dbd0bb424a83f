package httpapi

// Result 统一响应包
// - code: 2000 成功, -1 失败
// - type: 'success' | 'info' | 'warning' | 'error'，前端据此弹出通知
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

// Notify is a successful result that carries a user-facing message.
func Notify[T any](typ, message string, result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: typ, Message: message, Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// Warn is a rejected user action that left state unchanged.
func Warn(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "warning", Message: message, Result: nil}
}
