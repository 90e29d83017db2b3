package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-shop-orders/internal/apperr"
	"github.com/ariefcatur/go-shop-orders/internal/auth"
	"github.com/ariefcatur/go-shop-orders/internal/users"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserDirectory is implemented by *users.Service.
type UserDirectory interface {
	Register(ctx context.Context, in users.Registration) (*users.User, error)
	Authenticate(ctx context.Context, email, password string) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

type UsersHandler struct {
	users UserDirectory
	iss   *auth.Issuer
	log   *zap.Logger
}

func NewUsersHandler(dir UserDirectory, iss *auth.Issuer, log *zap.Logger) *UsersHandler {
	return &UsersHandler{users: dir, iss: iss, log: log}
}

func (h *UsersHandler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(RequireBearer(h.iss)).Get("/", h.get)
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const minPasswordLen = 8

func checkPassword(p string) error {
	switch {
	case p == "":
		return apperr.New(apperr.Validation, `"password" is required`)
	case len(p) < minPasswordLen:
		return apperr.New(apperr.Validation, `"password" length must be at least 8 characters long`)
	}
	return nil
}

func (h *UsersHandler) register(w http.ResponseWriter, r *http.Request) {
	var req users.Registration
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	for _, f := range []struct{ name, v string }{{"firstName", req.FirstName}, {"lastName", req.LastName}, {"email", req.Email}} {
		if strings.TrimSpace(f.v) == "" {
			fail(w, http.StatusBadRequest, `"`+f.name+`" is required`)
			return
		}
	}
	if err := checkPassword(req.Password); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Data: u.Profile(), Message: "Registration successful"})
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		fail(w, http.StatusBadRequest, `"email" is required`)
		return
	}
	if err := checkPassword(req.Password); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	token, err := h.iss.Generate(auth.Claims{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: token, Message: "Login successful"})
}

// get looks a user up by the email query parameter, or returns the caller
// when it is absent.
func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if c := auth.FromContext(r.Context()); email == "" && c != nil {
		email = c.Email
	}
	if email == "" {
		fail(w, http.StatusBadRequest, "Email is required")
		return
	}
	u, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if u == nil {
		fail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: u.Profile(), Message: "User found"})
}
