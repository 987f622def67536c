package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/habiliai/mcpchat/chat"
	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/router"
	"github.com/mokiat/gog"
)

type (
	ChatRequest struct {
		Message string `json:"message"`
	}

	ChatResponse struct {
		Response string `json:"response"`
		Status   string `json:"status"`
		Category string `json:"category,omitempty"`
		Warning  string `json:"warning,omitempty"`
	}

	ClearResponse struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	HealthResponse struct {
		Status          string    `json:"status"`
		ToolsAvailable  int       `json:"toolsAvailable"`
		Tools           []string  `json:"tools"`
		MemoryDocuments int       `json:"memoryDocuments"`
		Timestamp       time.Time `json:"timestamp"`
	}
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func createChatRouter(r *mux.Router, orch *chat.Orchestrator, logger *slog.Logger) {
	session := orch.Session()

	r.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		reply, err := orch.Process(r.Context(), req.Message)
		if errors.Is(err, errors.ErrEmptyText) {
			http.Error(w, "Message cannot be empty", http.StatusBadRequest)
			return
		} else if err != nil {
			logger.Warn("chat request rejected", "err", err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		res := ChatResponse{
			Response: reply.Text,
			Status:   StatusSuccess,
			Category: string(reply.Category),
			Warning:  reply.Warning,
		}
		if reply.Kind == chat.ReplyError {
			res.Status = StatusError
		}
		writeJSON(w, http.StatusOK, res)
	}).Methods("POST")

	r.HandleFunc("/clear", func(w http.ResponseWriter, r *http.Request) {
		reply, err := orch.Clear(r.Context())
		if errors.Is(err, errors.ErrSessionClosed) {
			writeJSON(w, http.StatusServiceUnavailable, ClearResponse{
				Status:  StatusError,
				Message: err.Error(),
			})
			return
		}
		if err != nil || reply.Kind == chat.ReplyError {
			msg := reply.Text
			if err != nil {
				msg = err.Error()
			}
			logger.Error("failed to clear history", "err", msg)
			writeJSON(w, http.StatusInternalServerError, ClearResponse{
				Status:  StatusError,
				Message: fmt.Sprintf("Failed to clear history: %s", msg),
			})
			return
		}

		writeJSON(w, http.StatusOK, ClearResponse{
			Status:  StatusSuccess,
			Message: "Chat history cleared successfully!",
		})
	}).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		tools := gog.Map(session.Registry.Available(), func(c router.Category) string {
			return string(c)
		})
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:          "healthy",
			ToolsAvailable:  len(tools),
			Tools:           tools,
			MemoryDocuments: session.Store.Len(),
			Timestamp:       time.Now(),
		})
	}).Methods("GET")
}

// NewHandler serves the chat endpoints. Turns are serialised by the orchestrator.
func NewHandler(orch *chat.Orchestrator, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	createChatRouter(r, orch, logger)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true), handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)))

	return cors(recovery(r))
}

// ListenAndServe runs the server until ctx is done.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("server started", "addr", addr)
	defer logger.Info("server stopped")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
