package api

import (
	"github.com/gorilla/mux"

	"github.com/lumora-ai/lumora-server/internal/api/recovery"
	"github.com/lumora-ai/lumora-server/internal/services"
)

// NewRouter wires all HTTP routes to their handlers.
func NewRouter(journal *services.JournalService, chat *services.ChatService, account *services.AccountService) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Journal entries
	journalHandler := NewJournalHandler(journal)
	root.HandleFunc("/api/journal", journalHandler.CreateEntry).Methods("POST")
	root.HandleFunc("/api/journal", journalHandler.ListEntries).Methods("GET")
	root.HandleFunc("/api/journal/{entryId}", journalHandler.GetEntry).Methods("GET")
	root.HandleFunc("/api/journal/{entryId}", journalHandler.UpdateEntry).Methods("PUT")
	root.HandleFunc("/api/journal/{entryId}", journalHandler.DeleteEntry).Methods("DELETE")

	// Journal logs
	root.HandleFunc("/api/journal/{entryId}/logs", journalHandler.AddLog).Methods("POST")
	root.HandleFunc("/api/journal/{entryId}/logs/{logId}", journalHandler.UpdateLog).Methods("PUT")
	root.HandleFunc("/api/journal/{entryId}/logs/{logId}", journalHandler.DeleteLog).Methods("DELETE")

	// Chat sessions
	chatHandler := NewChatHandler(chat)
	root.HandleFunc("/api/chat/session", chatHandler.StartSession).Methods("POST")
	root.HandleFunc("/api/chat/session/{sessionId}", chatHandler.ContinueSession).Methods("POST")
	root.HandleFunc("/api/chat/session/{sessionId}", chatHandler.GetSession).Methods("GET")
	root.HandleFunc("/api/chat/session/{sessionId}", chatHandler.DeleteSession).Methods("DELETE")
	root.HandleFunc("/api/chat/sessions", chatHandler.ListSessions).Methods("GET")

	// Account
	accountHandler := NewAccountHandler(account)
	root.HandleFunc("/api/users/{userId}", accountHandler.DeleteUser).Methods("DELETE")

	// Health
	healthHandler := NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return root
}
