package web

import (
	"net/http"
)

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]interface{}{"id": user.ID, "username": user.Username})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]interface{}{"id": user.ID, "username": user.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMessage(w, "logged out")
}

type profileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, userID uint) {
	var req profileRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), userID, req.Username, req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]interface{}{"username": user.Username, "email": user.Email})
}

type sendCodeRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleSendCode(w http.ResponseWriter, r *http.Request, userID uint) {
	if s.verification == nil {
		s.mailDisabled(w)
		return
	}
	var req sendCodeRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.verification.SendCode(r.Context(), userID, req.Type); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMessage(w, "verification code sent")
}

type verifyEmailRequest struct {
	Code     string `json:"code"`
	NewEmail string `json:"new_email"`
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request, userID uint) {
	if s.verification == nil {
		s.mailDisabled(w)
		return
	}
	var req verifyEmailRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.verification.VerifyEmailChange(r.Context(), userID, req.Code, req.NewEmail); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMessage(w, "email updated")
}

type verifyPasswordRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleVerifyPassword(w http.ResponseWriter, r *http.Request, userID uint) {
	if s.verification == nil {
		s.mailDisabled(w)
		return
	}
	var req verifyPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.verification.VerifyPasswordChange(r.Context(), userID, req.Code, req.NewPassword); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMessage(w, "password updated")
}

func (s *Server) mailDisabled(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusServiceUnavailable, Response{
		Success: false,
		Error:   &ErrorInfo{Code: "mail_disabled", Message: "mail is not configured"},
	})
}
