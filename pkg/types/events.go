package types

type Topic string

const (
	TopicAccount  Topic = "account"
	TopicLobby    Topic = "lobby"
	TopicGame     Topic = "subscribe"
	TopicChat     Topic = "chat"
	TopicGameChat Topic = "gameChat"
)

// Push event names. Several have aliases from older server generations; the
// reducers accept all of them.
const (
	EvtAccountUpdate     = "accountUpdate"
	EvtTitlesUpdate      = "titlesUpdate"
	EvtFriendsUpdate     = "friendsUpdate"
	EvtLobbysUpdate      = "lobbysUpdate"
	EvtLobbyUpdate       = "lobbyUpdate"
	EvtGameUpdate        = "gameUpdate"
	EvtPlayersUpdate     = "playersUpdate"
	EvtAvatarUpdate      = "avatarUpdate"
	EvtCardsUpdate       = "cardsUpdate"
	EvtGameCardUpdate    = "gameCardUpdate"
	EvtDrinkUpdate       = "drinkUpdate"
	EvtPlayerDrinkUpdate = "playerDrinkUpdate"
	EvtTurnInfoUpdate    = "turnInfoUpdate"
	EvtBusfahrerUpdate   = "busfahrerUpdate"
	EvtPhase2            = "phase2"
	EvtPhase3            = "phase3"
	EvtKicked            = "kicked"
	EvtKickUpdate        = "kickUpdate"
	EvtClose             = "close"
	EvtCloseUpdate       = "closeUpdate"
	EvtGameClosed        = "gameClosed"
	EvtStart             = "start"
	EvtStartUpdate       = "startUpdate"
	EvtNewGameUpdate     = "newGameUpdate"
	EvtChatUpdate        = "chatUpdate"
)

func IsKick(eventType string) bool {
	return eventType == EvtKicked || eventType == EvtKickUpdate
}

func IsClose(eventType string) bool {
	return eventType == EvtClose || eventType == EvtCloseUpdate || eventType == EvtGameClosed
}

func IsStart(eventType string) bool {
	return eventType == EvtStart || eventType == EvtStartUpdate
}
