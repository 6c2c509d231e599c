package errors

import "errors"

// ── 错误分类 ──
// 业务模块的哨兵错误通过 New 归入以下四类，Handler 层可先匹配具体错误，再按分类兜底。

var (
	// ErrValidation 请求数据格式错误或缺少必填字段
	ErrValidation = errors.New("参数校验失败")
	// ErrNotFound 报名、报名者或审核记录不存在
	ErrNotFound = errors.New("资源不存在")
	// ErrStateConflict 当前生命周期/审核状态不允许该操作
	ErrStateConflict = errors.New("资源不允许变动")
	// ErrPersistence 底层存储拒绝写入
	ErrPersistence = errors.New("数据持久化失败")
)

// BizError 带分类的业务错误
type BizError struct {
	kind error
	msg  string
}

// New 创建归属于 kind 分类的业务错误
func New(kind error, msg string) *BizError {
	return &BizError{kind: kind, msg: msg}
}

func (e *BizError) Error() string { return e.msg }

// Is 使 errors.Is(err, ErrXxx) 对所属分类同样成立
func (e *BizError) Is(target error) bool {
	return target == e.kind
}

// Persistence 将底层存储错误包装为 ErrPersistence，保留原始错误链
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return &persistenceError{err: err}
}

type persistenceError struct {
	err error
}

func (e *persistenceError) Error() string { return ErrPersistence.Error() + ": " + e.err.Error() }

func (e *persistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *persistenceError) Unwrap() error { return e.err }
