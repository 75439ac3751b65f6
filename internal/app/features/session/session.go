// internal/app/features/session/session.go
package session

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/mealhub/internal/app/features/errors"
	userstore "github.com/dalemusser/mealhub/internal/app/store/users"
	"github.com/dalemusser/mealhub/internal/app/system/auth"
	"github.com/dalemusser/mealhub/internal/app/system/authz"
	"github.com/dalemusser/mealhub/internal/app/system/normalize"
	"github.com/dalemusser/mealhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// HandleLogin handles POST /session. With trust login enabled, a known and
// active email is enough to receive a session cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.TrustLogin {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "session login")
	defer cancel()
	target := uierrors.Target{Kind: "user", Action: "login"}

	var req loginRequest
	if err := uierrors.Decode(r, &req); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	email := normalize.Email(req.Email)
	if email == "" {
		h.ErrLog.Write(w, r, uierrors.BadRequest("email is required"), target)
		return
	}

	u, err := userstore.New(h.DB).GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Audit.LoginFailed(ctx, r, email, "user not found")
		uierrors.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown email"})
		return
	}
	if err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if u.Status != "" && u.Status != "active" {
		h.Audit.LoginFailed(ctx, r, email, "account "+u.Status)
		uierrors.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "account is not active"})
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}); err != nil {
		h.ErrLog.Write(w, r, err, target)
		return
	}
	if h.Limiter != nil {
		h.Limiter.Reset(loginKey(r))
	}
	h.Audit.LoginSuccess(ctx, r, u.ID)
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()))
	uierrors.WriteJSON(w, http.StatusOK, loginResponse{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	})
}

// HandleLogout handles DELETE /session.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if ok {
		h.Audit.Logout(r.Context(), r, uid)
	}
	w.WriteHeader(http.StatusNoContent)
}
