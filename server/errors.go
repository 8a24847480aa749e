package server

// ErrKind 是领域失败的封闭集合。映射层对它做穷尽匹配，
// 不在集合内的错误一律按未知内部错误处理。
type ErrKind int

const (
	// KindUserNotFound token 指向的用户不存在 -> 业务码 5001
	KindUserNotFound ErrKind = iota + 1
	// KindUserToken 凭证缺失/无效/过期 -> 业务码 5000
	KindUserToken
	// KindPostParams 内部操作时的参数异常 -> 业务码 400
	KindPostParams
	// KindGetParams 内部查询时的参数异常 -> 业务码 400
	KindGetParams
	// KindValidation 服务端内部校验失败 -> 业务码 500
	KindValidation
	// KindRequestValidation 请求体格式/字段校验失败 -> 业务码 422
	KindRequestValidation
)

// AppError 携带失败种类与描述，handler 返回后由映射层统一转换为响应
type AppError struct {
	Kind ErrKind
	Desc string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Desc + ": " + e.Err.Error()
	}
	return e.Desc
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func userNotFoundError(desc string) *AppError {
	return &AppError{Kind: KindUserNotFound, Desc: desc}
}

func userTokenError(desc string) *AppError {
	return &AppError{Kind: KindUserToken, Desc: desc}
}

func postParamsError(desc string) *AppError {
	return &AppError{Kind: KindPostParams, Desc: desc}
}

func getParamsError(desc string) *AppError {
	return &AppError{Kind: KindGetParams, Desc: desc}
}

func validationError(desc string, err error) *AppError {
	return &AppError{Kind: KindValidation, Desc: desc, Err: err}
}

func requestValidationError(desc string) *AppError {
	return &AppError{Kind: KindRequestValidation, Desc: desc}
}
