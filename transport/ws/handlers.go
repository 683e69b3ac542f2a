package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/songclash/songclash/core"
	"github.com/songclash/songclash/service"
)

// Services bundles everything a connection needs to handle traffic.
type Services struct {
	Auth       *service.AuthService
	Friends    *service.FriendService
	Challenges *service.ChallengeService
	Uploads    *service.UploadService
	Log        *slog.Logger
}

// handlerTable is the accepted-message set for a status. Before login only
// the login event exists; after login the full set replaces it and login is
// gone for the life of the connection.
func (c *Conn) handlerTable(status core.Status) map[string]handlerFunc {
	switch status {
	case core.StatusAuthenticated:
		return map[string]handlerFunc{
			core.EventGetFriends:       c.handleGetFriends,
			core.EventChallenge:        c.handleChallenge,
			core.EventDeclineChallenge: c.handleDecline,
			core.EventStartPlaying:     c.handleStartPlaying,
			core.EventChallengeUpdate:  c.handleChallengeUpdate,
			core.EventIsUploaded:       c.handleIsUploaded,
			core.EventUpload:           c.handleUpload,
		}
	default:
		return map[string]handlerFunc{
			core.EventLogin: c.handleLogin,
		}
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Conn) handleLogin(ctx context.Context, data json.RawMessage) {
	var req loginRequest
	if err := json.Unmarshal(data, &req); err != nil {
		_ = c.Send(core.EventLoginFailed, core.ReasonMissingData)
		return
	}

	session, err := c.srv.Auth.Authenticate(ctx, c, service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Send(core.EventLoginFailed, core.ReasonFor(err))
		return
	}

	// Authenticate has already promoted this connection and registered it;
	// the success frame goes out against the post-login handler set.
	_ = c.Send(core.EventLoginOK, map[string]string{
		"uid":    session.UID,
		"secret": session.Secret,
	})
}

func (c *Conn) handleGetFriends(ctx context.Context, _ json.RawMessage) {
	friends := c.srv.Friends.Friends(ctx, c.Identity())
	_ = c.Send(core.EventFriendsList, friends)
}

type challengeRequest struct {
	UID     string `json:"uid"` // target identity
	SongID  string `json:"songId"`
	Seconds int    `json:"seconds"`
}

func (c *Conn) handleChallenge(ctx context.Context, data json.RawMessage) {
	var req challengeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		_ = c.Send(core.EventChallengeDeclined, core.ReasonMissingData)
		return
	}

	err := c.srv.Challenges.Challenge(ctx, c.Identity(), service.ChallengeRequest{
		TargetUID: req.UID,
		SongID:    req.SongID,
		Seconds:   req.Seconds,
	})
	if err != nil {
		_ = c.Send(core.EventChallengeDeclined, core.ReasonFor(err))
	}
}

type declineRequest struct {
	UID string `json:"uid"` // original initiator
}

func (c *Conn) handleDecline(ctx context.Context, data json.RawMessage) {
	var req declineRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	if err := c.srv.Challenges.Decline(req.UID); err != nil {
		c.srv.Log.Debug("decline dropped", "err", err)
	}
}

type startPlayingRequest struct {
	YourID  string `json:"yourId"` // counterpart identity
	Seconds int    `json:"seconds"`
}

func (c *Conn) handleStartPlaying(ctx context.Context, data json.RawMessage) {
	var req startPlayingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	if err := c.srv.Challenges.Start(c.Identity(), req.YourID, req.Seconds); err != nil {
		c.srv.Log.Debug("start dropped", "err", err)
	}
}

type challengeUpdateRequest struct {
	YourID  string `json:"yourId"` // counterpart identity
	Message string `json:"message"`
}

func (c *Conn) handleChallengeUpdate(ctx context.Context, data json.RawMessage) {
	var req challengeUpdateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	if err := c.srv.Challenges.Update(c.Identity(), req.YourID, req.Message); err != nil {
		c.srv.Log.Debug("update dropped", "err", err)
	}
}

func (c *Conn) handleIsUploaded(ctx context.Context, data json.RawMessage) {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		_ = c.Send(core.EventUploadStatus, false)
		return
	}
	_ = c.Send(core.EventUploadStatus, c.srv.Uploads.IsUploaded(ctx, id))
}

type uploadRequest struct {
	Hash string `json:"hash"`
	Data []byte `json:"data"`
}

func (c *Conn) handleUpload(ctx context.Context, data json.RawMessage) {
	var req uploadRequest
	if err := json.Unmarshal(data, &req); err != nil {
		_ = c.Send(core.EventUploadFailed, core.ReasonMissingData)
		return
	}
	if err := c.srv.Uploads.Upload(ctx, req.Hash, req.Data); err != nil {
		_ = c.Send(core.EventUploadFailed, core.ReasonFor(err))
		return
	}
	_ = c.Send(core.EventUploadStatus, true)
}
