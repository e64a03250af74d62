package v1

import (
	"net/http"
	"time"

	"evalue-storefront/internal/domain"
	"evalue-storefront/internal/usecase"
	"evalue-storefront/pkg/logger"
	"evalue-storefront/pkg/utils"
)

const accessTokenCookie = "accessToken"

type AuthHandler struct {
	authUC        *usecase.AuthUsecase
	secureCookies bool
}

func NewAuthHandler(authUC *usecase.AuthUsecase, secureCookies bool) *AuthHandler {
	return &AuthHandler{authUC: authUC, secureCookies: secureCookies}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	sess, err := h.authUC.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.setSessionCookie(w, sess)
	utils.WriteJSON(w, http.StatusCreated, sess)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	sess, err := h.authUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Info().Str("user_id", sess.UserID()).Msg("User signed in")
	h.setSessionCookie(w, sess)
	utils.WriteJSON(w, http.StatusOK, sess)
}

// Logout always clears the cookie, even when no valid session was sent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authUC.Logout(r.Context(), domain.SessionFromContext(r.Context()))

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authUC.Me(domain.SessionFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sess *domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
	})
}
