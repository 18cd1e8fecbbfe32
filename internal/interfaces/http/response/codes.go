package response

// 业务错误码，按领域分段
const (
	// 文档 7000xx
	CodeInvalidParams    = 700001
	CodeDocumentNotFound = 700002
	CodeIngestFailed     = 700003
	CodeUploadTooLarge   = 700004
	CodeUnsupportedFile  = 700005
	CodeStoreFailed      = 700006
	CodeUnauthorized     = 700401

	// 对话 7100xx
	CodeChatInvalidParams = 710001
	CodeSessionNotFound   = 710002
	CodeSendInFlight      = 710003
	CodeCompletionFailed  = 710004
	CodeEmptyMessage      = 710005
	CodeWebSocketFailed   = 710006
	CodeSendCanceled      = 710007

	// 状态 7200xx
	CodeStatusTimeout = 720001
	CodeStatusFailed  = 720002

	// 目录 7300xx
	CodeCatalogUnavailable = 730001

	// 弹窗 7400xx
	CodePopupInvalidParams = 740001
	CodePopupFailed        = 740002
)
