package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/RichardoC/couples-gpt/internal/auth"
	"github.com/RichardoC/couples-gpt/internal/llm"
	"github.com/RichardoC/couples-gpt/internal/models"
	"github.com/RichardoC/couples-gpt/internal/session"
	"go.uber.org/zap"
)

const (
	maxUploadBytes = 10 << 20
	maxChatBytes   = 64 << 10
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type UserStore interface {
	EnsureUser(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type Handler struct {
	users    UserStore
	chat     *llm.Service
	verifier auth.Verifier
	sessions *session.Manager
	logger   *zap.Logger
}

func NewHandler(users UserStore, chat *llm.Service, verifier auth.Verifier, sessions *session.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		users:    users,
		chat:     chat,
		verifier: verifier,
		sessions: sessions,
		logger:   logger,
	}
}

type ChatRequest struct {
	Message  string          `json:"message"`
	ChatType models.ChatType `json:"chat_type"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type loginPage struct {
	Flash *session.Flash
}

type dashboardPage struct {
	Username    string
	Flash       *session.Flash
	PrivateChat []models.ChatMessage
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, "login.html", loginPage{Flash: h.sessions.PopFlash(w, r)})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		username := r.PostForm.Get("username")
		password := r.PostForm.Get("password")

		if !h.verifier.Verify(r.Context(), username, password) {
			h.logger.Info("Rejected login", zap.String("username", username))
			h.render(w, "login.html", loginPage{
				Flash: &session.Flash{Category: "danger", Message: "Invalid username or password"},
			})
			return
		}

		user, err := h.users.EnsureUser(r.Context(), username)
		if err != nil {
			h.logger.Error("Failed to load user", zap.Error(err), zap.String("username", username))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if err := h.sessions.Issue(w, user); err != nil {
			h.logger.Error("Failed to issue session", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		h.logger.Info("User logged in", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.sessions.Clear(w)
	h.sessions.SetFlash(w, "success", "Logged out successfully.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	switch r.Method {
	case http.MethodGet:
		history, err := h.chat.History(r.Context(), user.ID)
		if err != nil {
			h.logger.Error("Failed to get history", zap.Error(err), zap.Int64("user_id", user.ID))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		h.render(w, "dashboard.html", dashboardPage{
			Username:    user.Username,
			Flash:       h.sessions.PopFlash(w, r),
			PrivateChat: history,
		})

	case http.MethodPost:
		h.handleChat(w, r, user)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid input. Ensure message and chat_type are provided."})
		return
	}

	reply, err := h.chat.Chat(r.Context(), user.ID, req.ChatType, req.Message)
	var upstream *llm.UpstreamError
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, llm.ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid input. Ensure message and chat_type are provided."})
	case errors.Is(err, llm.ErrRateLimited):
		h.logger.Warn("Completion rate limited", zap.Int64("user_id", user.ID))
		h.writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "Rate limit reached. Retry later."})
	case errors.As(err, &upstream):
		h.logger.Error("Completion failed", zap.Error(err), zap.Int64("user_id", user.ID))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: fmt.Sprintf("Error communicating with OpenAI API: %s", upstream.Message),
		})
	default:
		h.logger.Error("Failed to process message", zap.Error(err), zap.Int64("user_id", user.ID))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// History serves the dashboard history as JSON.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user := currentUser(r.Context())

	history, err := h.chat.History(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to get history", zap.Error(err), zap.Int64("user_id", user.ID))
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	h.logger.Debug("Retrieved history",
		zap.Int("count", len(history)),
		zap.Int64("user_id", user.ID))
	h.writeJSON(w, http.StatusOK, history)
}

func (h *Handler) UploadHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.importUpload(w, r, currentUser(r.Context()))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// importUpload stores the uploaded file and reports the outcome as a flash.
func (h *Handler) importUpload(w http.ResponseWriter, r *http.Request, user *models.User) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.sessions.SetFlash(w, "danger", "Invalid file type. Please upload a JSON file.")
		return
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "application/json" {
		h.sessions.SetFlash(w, "danger", "Invalid file type. Please upload a JSON file.")
		return
	}

	n, err := h.chat.Import(r.Context(), user.ID, file)
	if err != nil {
		h.logger.Warn("Failed to import history", zap.Error(err), zap.Int64("user_id", user.ID))
		h.sessions.SetFlash(w, "danger", fmt.Sprintf("Failed to upload history: %v", err))
		return
	}

	h.logger.Info("Uploaded history", zap.Int("count", n), zap.Int64("user_id", user.ID))
	h.sessions.SetFlash(w, "success", "History uploaded successfully.")
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("Failed to render template", zap.Error(err), zap.String("template", name))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
