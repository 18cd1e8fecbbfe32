package status

import "github.com/google/wire"

// ProviderSet 状态检查 ProviderSet
var ProviderSet = wire.NewSet(
	NewChecker,
	NewContextAuthenticator,
	wire.Bind(new(Authenticator), new(*ContextAuthenticator)),
)
