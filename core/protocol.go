package core

// Wire event names for the duplex message protocol.
const (
	EventLogin             = "login"
	EventLoginOK           = "loginOK"
	EventLoginFailed       = "loginFailed"
	EventGetFriends        = "getFriends"
	EventFriendsList       = "friendsList"
	EventChallenge         = "challenge"
	EventDeclineChallenge  = "declineChallenge"
	EventChallengeDeclined = "challengeDeclined"
	EventStartPlaying      = "startPlaying"
	EventChallengeUpdate   = "challengeUpdate"
	EventIsUploaded        = "isUploaded"
	EventUploadStatus      = "uploadStatus"
	EventUpload            = "upload"
	EventUploadFailed      = "uploadFailed"
)

// ChallengePayload is a challenge relayed to the target's connections. UID is
// always the initiator, stamped server-side.
type ChallengePayload struct {
	UID     string `json:"uid"`
	SongID  string `json:"songId"`
	Seconds int    `json:"seconds"`
}

// StartPayload announces a round start to a counterpart. UID is the sender.
type StartPayload struct {
	UID     string `json:"uid"`
	Seconds int    `json:"seconds"`
}

// UpdatePayload is a free-form in-round status message. UID is the sender.
type UpdatePayload struct {
	UID     string `json:"uid"`
	Message string `json:"message"`
}
