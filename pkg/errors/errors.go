package errors

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeServerError  = 500
)

// ========== 考勤业务错误类型 ==========

// 考勤引擎的业务失败以结构化结果返回，不走异常路径
const (
	KindMemberNotFound     = "MemberNotFound"     // 会员编号不存在
	KindMemberInactive     = "MemberInactive"     // 会员状态不可用
	KindTenantMismatch     = "TenantMismatch"     // 二维码归属场馆与会员实际场馆不一致
	KindNoActiveMembership = "NoActiveMembership" // 没有有效会籍
	KindPersistenceFailure = "PersistenceFailure" // 存储层读写失败
)
