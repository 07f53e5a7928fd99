package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jamesinreallife/oram-public/internal/engine"
)

type commandRequest struct {
	Command       string `json:"command"`
	ForcedSpeaker string `json:"forced_speaker"`
}

// handleCommand answers POST /. Every handled path is a 200; only malformed
// JSON (400) and panics (500) are not. A missing body is an empty command.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ip := clientIP(r)
	if !s.limiter.Allow(ip) {
		s.log.Info("rate limited", zap.String("client", ip))
		s.reply(w, engine.Notice(engine.MsgRateLimited, req.ForcedSpeaker))
		return
	}

	if utf8.RuneCountInString(req.Command) > s.maxInput {
		s.reply(w, engine.Notice(engine.MsgTooLong, req.ForcedSpeaker))
		return
	}

	if s.restricted != nil && s.restricted.MatchString(req.Command) {
		s.log.Info("restricted term refused", zap.String("client", ip))
		s.reply(w, engine.Refusal(req.ForcedSpeaker))
		return
	}

	reply, err := s.engine.Respond(r.Context(), req.Command, req.ForcedSpeaker)
	if err != nil {
		s.log.Error("dispatch failed", zap.Error(err), zap.Stringer("intent", reply.Intent))
		s.reply(w, engine.Notice(engine.MsgApology, req.ForcedSpeaker))
		return
	}
	s.reply(w, reply)
}

func (s *Server) reply(w http.ResponseWriter, rep engine.Reply) {
	if s.multiAgent {
		writeJSON(w, http.StatusOK, map[string]any{"messages": rep.Messages})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": rep.Text()})
}

// clientIP keys the rate limiter. RealIP has already folded proxy headers
// into RemoteAddr; strip the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
