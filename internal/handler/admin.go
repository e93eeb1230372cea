package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/event-saas/internal/apperror"
	"github.com/sakif/event-saas/internal/auth"
	"github.com/sakif/event-saas/internal/service"
	"github.com/sakif/event-saas/internal/session"
)

// sessionCookie is the name of the admin session cookie. HttpOnly, so script
// in a compromised page cannot read it.
const sessionCookie = "admin_session"

// AdminHandler manages the session-based administrator login flow.
//
// Administrators authenticate with a form login and a server-side session
// rather than JWTs: the admin surface is a first-party browser UI where a
// revocable session is worth more than statelessness.
type AdminHandler struct {
	admins    *service.AdministratorAuthService
	passwords *auth.PasswordService
	sessions  *session.Store
	logger    *slog.Logger
}

func NewAdminHandler(
	admins *service.AdministratorAuthService,
	passwords *auth.PasswordService,
	sessions *session.Store,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		admins:    admins,
		passwords: passwords,
		sessions:  sessions,
		logger:    logger,
	}
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates an administrator and starts a session.
//
// HTTP: POST /admin/login (JSON or form body: email, password)
//
// Like the JWT logins, unknown email and wrong password produce the same
// INVALID_CREDENTIALS response: the principal-not-found detail from the
// lookup stays server-side.
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoginRequest(r)
	if err != nil {
		writeError(w, apperror.ValidationFailed("body", "email and password are required"))
		return
	}

	creds, err := h.admins.LoadPrincipalByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeError(w, apperror.InvalidCredentials())
			return
		}
		h.logger.Error("admin login: lookup failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if err := h.passwords.Verify(creds.PasswordDigest, req.Password); err != nil {
		h.logger.Debug("admin login: password mismatch", slog.String("email", creds.Email))
		writeError(w, apperror.InvalidCredentials())
		return
	}

	sess := h.sessions.Create(creds.PrincipalID, creds.Email, creds.Role)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/admin",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable behind HTTPS
	})

	h.logger.Info("administrator logged in",
		slog.String("principalID", creds.PrincipalID),
		slog.String("email", creds.Email),
	)

	writeJSON(w, http.StatusOK, map[string]string{
		"email": creds.Email,
		"role":  string(creds.Role),
	})
}

// HandleLogout destroys the session and clears the cookie.
//
// HTTP: POST /admin/logout
func (h *AdminHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		h.sessions.Destroy(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the session's administrator identity.
//
// HTTP: GET /admin/api/me (behind RequireSession)
func (h *AdminHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFrom(r)
	if !ok {
		writeError(w, apperror.Unauthenticated("admin session required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"email": sess.Email,
		"role":  string(sess.Role),
	})
}

// RequireSession guards the admin API routes: everything under /admin except
// login and logout requires a live session. Unlike the JWT filter this does
// reject: the session IS the policy for this route group.
func (h *AdminHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.sessionFrom(r); !ok {
			writeError(w, apperror.Unauthenticated("admin session required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) sessionFrom(r *http.Request) (session.Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return session.Session{}, false
	}
	return h.sessions.Get(cookie.Value)
}

// decodeLoginRequest accepts both a JSON body and a classic form post: the
// admin login page submits a form while API tooling sends JSON.
func decodeLoginRequest(r *http.Request) (adminLoginRequest, error) {
	var req adminLoginRequest

	contentType := r.Header.Get("Content-Type")
	if contentType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	}

	if req.Email == "" || req.Password == "" {
		return req, errors.New("missing credentials")
	}
	return req, nil
}
