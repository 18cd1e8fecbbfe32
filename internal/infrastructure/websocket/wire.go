package websocket

import "github.com/google/wire"

// ProviderSet 连接中心与事件推送器
var ProviderSet = wire.NewSet(NewHub, NewChatEventPusher)
