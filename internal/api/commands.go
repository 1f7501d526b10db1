package api

import (
	"net/http"
	"net/url"
)

// Command builders. The server answers with an empty success envelope or an
// error; the resulting state change is pushed over the websocket.

func post(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

type game struct {
	GameID string `json:"gameId"`
}

func CreateGame(name string, private bool) Request {
	return post("create-game", struct {
		Name      string `json:"name,omitempty"`
		IsPrivate bool   `json:"isPrivate"`
	}{name, private})
}

// CreateGameResult is the response body of create-game.
type CreateGameResult struct {
	GameID string `json:"gameId"`
}

func JoinGame(gameID string) Request {
	return post("join-game/"+url.PathEscape(gameID), nil)
}

func StartGame(gameID string) Request { return post("start-game", game{gameID}) }

func LeaveGame(gameID string) Request { return post("leave-game", game{gameID}) }

func KickPlayer(gameID, playerID string) Request {
	return post("kick-player", struct {
		GameID   string `json:"gameId"`
		PlayerID string `json:"playerId"`
	}{gameID, playerID})
}

func LayCard(gameID string, cardIndex, pyramidIndex int) Request {
	return post("lay-card", struct {
		GameID       string `json:"gameId"`
		CardIndex    int    `json:"cardIndex"`
		PyramidIndex int    `json:"pyramidIndex"`
	}{gameID, cardIndex, pyramidIndex})
}

func LayCardPhase(gameID string, cardIndex int) Request {
	return post("lay-card-phase", struct {
		GameID    string `json:"gameId"`
		CardIndex int    `json:"cardIndex"`
	}{gameID, cardIndex})
}

func FlipRow(gameID string, phase int) Request {
	return post("flip-row", struct {
		GameID string `json:"gameId"`
		Phase  int    `json:"phase"`
	}{gameID, phase})
}

func NextPlayer(gameID string) Request { return post("next-player", game{gameID}) }

func NextPlayerPhase(gameID string) Request { return post("next-player-phase", game{gameID}) }

func StartPhase2(gameID string) Request { return post("start-phase2", game{gameID}) }

func StartPhase3(gameID string) Request { return post("start-phase3", game{gameID}) }

func SetClickSound(sound string) Request {
	return post("set-click-sound", map[string]string{"clickSound": sound})
}

func SetCardTheme(theme string) Request {
	return post("set-card-theme", map[string]string{"cardTheme": theme})
}

func SetTitle(titleID string) Request {
	return post("set-title", map[string]string{"titleId": titleID})
}

func SetAvatar(avatar string) Request {
	return post("set-avatar", map[string]string{"avatar": avatar})
}

func UploadAvatar(filename string, content []byte) Request {
	return Request{
		Method: http.MethodPost,
		Path:   "upload-avatar",
		Upload: &Upload{Field: "avatar", Filename: filename, Content: content},
	}
}

func SendFriendRequest(friendCode string) Request {
	return post("send-friend-request", map[string]string{"friendCode": friendCode})
}

func AcceptFriendRequest(requestID string) Request {
	return post("accept-friend-request", map[string]string{"requestId": requestID})
}

func DeclineFriendRequest(requestID string) Request {
	return post("decline-friend-request", map[string]string{"requestId": requestID})
}

func RemoveFriend(friendID string) Request {
	return post("remove-friend", map[string]string{"friendId": friendID})
}

// SendMessage targets a friend when friendID is set, otherwise the game chat.
func SendMessage(friendID, gameID, text string) Request {
	return post("send-message", struct {
		FriendID string `json:"friendId,omitempty"`
		GameID   string `json:"gameId,omitempty"`
		Text     string `json:"text"`
	}{friendID, gameID, text})
}

func MarkMessagesRead(friendID string) Request {
	return post("mark-messages-read", map[string]string{"friendId": friendID})
}

func Logout() Request { return post("logout", nil) }
