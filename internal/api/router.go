// Package api exposes the marketplace over HTTP/JSON.
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/carenshare/carenshare/internal/notify"
	"github.com/carenshare/carenshare/internal/workflow"
)

// NewRouter builds the full API route table.
func NewRouter(db *sql.DB, jwtSecret string, wf *workflow.Service, mail *notify.Service, resetTTL time.Duration) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Mail: mail, ResetTTL: resetTTL}
	itemsHandler := &ItemsHandler{DB: db, Workflow: wf}
	requestsHandler := &RequestsHandler{DB: db, Workflow: wf}
	adminHandler := &AdminHandler{DB: db, Workflow: wf}

	authed := AuthMiddleware(jwtSecret, db)
	optional := OptionalAuth(jwtSecret, db)
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(RequireAdmin(h))
	}

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.Handle("GET /api/items/{id}", optional(http.HandlerFunc(itemsHandler.Get)))

	// Authenticated.
	mux.Handle("POST /api/auth/logout", authed(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authed(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authed(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/items", authed(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/mine", authed(http.HandlerFunc(itemsHandler.Mine)))
	mux.Handle("DELETE /api/items/{id}", authed(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("POST /api/requests", authed(http.HandlerFunc(requestsHandler.Create)))
	mux.Handle("GET /api/requests/mine", authed(http.HandlerFunc(requestsHandler.Mine)))

	// Admin.
	mux.Handle("GET /api/admin/items", admin(adminHandler.ListItems))
	mux.Handle("POST /api/admin/items/{id}/approve", admin(adminHandler.ApproveItem))
	mux.Handle("POST /api/admin/items/{id}/reject", admin(adminHandler.RejectItem))
	mux.Handle("GET /api/admin/requests", admin(adminHandler.ListRequests))
	mux.Handle("POST /api/admin/requests/{id}/approve", admin(adminHandler.ApproveRequest))
	mux.Handle("POST /api/admin/requests/{id}/reject", admin(adminHandler.RejectRequest))
	mux.Handle("GET /api/admin/stats", admin(adminHandler.Stats))
	mux.Handle("GET /api/admin/users", admin(adminHandler.ListUsers))
	mux.Handle("PUT /api/admin/users/{id}/role", admin(adminHandler.UpdateUserRole))
	mux.Handle("DELETE /api/admin/users/{id}", admin(adminHandler.DeleteUser))

	return LoggingMiddleware(mux)
}
