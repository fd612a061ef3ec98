package server

import (
	"context"
	"net/http"

	"farmstead/internal/handlers"
	applog "farmstead/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/signup", handlers.Signup)
	mux.HandleFunc("/login", handlers.Login)
	mux.HandleFunc("/logout", handlers.Logout)
	mux.Handle("/api/formulas", handlers.RequireAuthentication(http.HandlerFunc(handlers.FormulaResource)))
	mux.Handle("/api/formulas/", handlers.RequireAuthentication(http.HandlerFunc(handlers.FormulaResource)))
	mux.Handle("/api/stocks", handlers.RequireAuthentication(http.HandlerFunc(handlers.StockResource)))
	mux.Handle("/api/stocks/", handlers.RequireAuthentication(http.HandlerFunc(handlers.StockResource)))
	applog.Debug(context.Background(), "routes registered", "protectedPrefix", "/api/")
	return mux
}
