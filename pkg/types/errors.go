package types

import "errors"

// 错误分类
//
// 所有前置条件类错误（额度用尽、冷却中、功能未解锁、目标状态不符）
// 都满足 errors.Is(err, ErrPreconditionFailed)，调用方据此提示玩家，状态保持不变。
// 外部调用失败（支付网关拒绝、签名被拒、网络错误）满足 errors.Is(err, ErrExternalCallFailed)。
var (
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrExternalCallFailed = errors.New("external call failed")
)

// 具体的前置条件错误
var (
	ErrWaterQuotaExhausted = preconditionError("daily water limit reached")
	ErrGardenFull          = preconditionError("maximum plants reached for current level")
	ErrPlantCooldown       = preconditionError("please wait before adding another plant")
	ErrPesticideLocked     = preconditionError("pesticides are not yet unlocked")
	ErrPesticideNotNeeded  = preconditionError("this plant doesn't need pesticide right now")
	ErrPlantNotFound       = preconditionError("plant not found")
	ErrUnknownPlantType    = preconditionError("unknown plant type")
	ErrNotSignedIn         = preconditionError("no user signed in")
	ErrWalletNotConnected  = preconditionError("wallet not connected")
	ErrInvalidEmail        = preconditionError("invalid email")
	ErrNoPaymentGateway    = preconditionError("payment gateway not configured")
	ErrPurchaseInProgress  = preconditionError("a purchase is already in progress")
)

// PreconditionError 前置条件错误，Unwrap 到 ErrPreconditionFailed
type PreconditionError struct {
	Reason string
}

func preconditionError(reason string) *PreconditionError {
	return &PreconditionError{Reason: reason}
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}
