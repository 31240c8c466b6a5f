package mockapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/deividlukks/Fayol-sub007/pkg/httputil"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const minPasswordLength = 6

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	fields := httputil.FieldErrors{}
	fields.Require("name", req.Name)
	fields.Require("email", req.Email)
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		fields.Add("email", "email must be a valid address")
	}
	if len(req.Password) < minPasswordLength {
		fields.Add("password", "password must have at least 6 characters")
	}
	if !fields.Empty() {
		httputil.WriteValidationError(w, "Dados inválidos", fields)
		return
	}

	u, ok := s.store.createUser(req.Name, req.Email, req.Phone, req.Password)
	if !ok {
		httputil.WriteError(w, http.StatusConflict, "E-mail já cadastrado")
		return
	}
	s.logger.ComponentInfo(componentMock, "User registered", zap.String("user_id", u.ID))
	httputil.WriteData(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	u, ok := s.store.userByEmail(req.Email)
	if !ok || u.password != req.Password {
		httputil.WriteError(w, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}

	access, refresh := s.store.login(u)
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          u,
	})
}

func (s *Server) handleCheckUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	u, ok := s.store.userByEmail(req.Identifier)
	if !ok {
		httputil.WriteData(w, http.StatusOK, map[string]any{"exists": false})
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"exists": true, "name": u.Name, "email": u.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.store.logout(currentToken(r))
	httputil.WriteMessage(w, "Logout realizado com sucesso")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, map[string]any{"user": currentUser(r)})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := httputil.DecodeJSON(r, &req, false); err != nil || req.RefreshToken == "" {
		httputil.WriteError(w, http.StatusBadRequest, "refresh_token é obrigatório")
		return
	}
	access, ok := s.store.rotate(req.RefreshToken)
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "Refresh token inválido")
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"access_token": access})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	// The reply is the same whether or not the address is registered.
	if u, ok := s.store.userByEmail(req.Email); ok {
		s.store.issueResetToken(u.ID)
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{
		"message": "Se o e-mail existir, você receberá as instruções de recuperação",
	})
}

func (s *Server) handleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]bool{"valid": s.store.validResetToken(req.Token)})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		httputil.WriteValidationError(w, "Dados inválidos", map[string][]string{
			"newPassword": {"password must have at least 6 characters"},
		})
		return
	}
	if !s.store.resetPassword(req.Token, req.NewPassword) {
		httputil.WriteError(w, http.StatusBadRequest, "Token inválido ou expirado")
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]string{"message": "Senha redefinida com sucesso"})
}
