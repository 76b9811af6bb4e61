package checkout

import "errors"

var (
	ErrCartEmpty           = errors.New("checkout: cart is empty")
	ErrInvalidPersonalInfo = errors.New("checkout: invalid personal info")
	ErrSubmissionInFlight  = errors.New("checkout: submission in flight")
	ErrSubmissionFailed    = errors.New("checkout: submission failed")
)

// SubmissionError 提交失败；购物车保持不变，可重试
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return ErrSubmissionFailed.Error()
	}
	return ErrSubmissionFailed.Error() + ": " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrSubmissionFailed) 成立
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// ValidationError 个人信息校验失败的字段列表
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidPersonalInfo.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPersonalInfo
}
