package network

// Message ids. Inbound player events sit in the 1xx range, outbound pushes
// in the 3xx range.
const (
	MsgTypeHeartbeat = 1
	MsgTypeIdentify  = 2

	MsgTypeCreateGame    = 101
	MsgTypeListGames     = 102
	MsgTypeGetGameState  = 103
	MsgTypeJoinGame      = 104
	MsgTypePlayCard      = 105
	MsgTypeResign        = 106
	MsgTypeNextMatchGame = 107
	MsgTypeCancelGame    = 108
	MsgTypePendingGames  = 109

	MsgTypeGames         = 301
	MsgTypeGameCreated   = 302
	MsgTypeGameJoined    = 303
	MsgTypeGameStarted   = 304
	MsgTypeGameState     = 305
	MsgTypeGameOver      = 306
	MsgTypeTimerTick     = 307
	MsgTypeTimerWarning  = 308
	MsgTypeTimeoutNotice = 309
	MsgTypeGameCancelled = 310
	MsgTypeError         = 399
)
