package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"middleware-loja/middleware/ratelimit"
	"middleware-loja/middleware/ratelimit/domain"
)

// Exemplo: injetando o limiter por rota direto no seu webserver (sem proxy).
// O "login" aqui é de mentira — a senha certa é sempre "senha123" — mas o
// fluxo de reporte de desfecho é o real.
func main() {
	limiter := ratelimit.New(ratelimit.Options{
		AddRateLimitHeaders: true,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	limiter.StartJanitor(ctx)

	mux := http.NewServeMux()

	login := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := r.FormValue("email")
		password := r.FormValue("password")

		if password != "senha123" {
			limiter.ReportLogin(r, email, "", false)
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		limiter.ReportLogin(r, email, "user-"+email, true)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("welcome\n"))
	})
	mux.Handle("/login", limiter.Require(domain.CategoryAuth, domain.ActionSession)(login))

	addToCart := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("added\n"))
	})
	mux.Handle("/cart/add", limiter.Require(
		domain.CategoryCart, domain.ActionCartAdd,
		ratelimit.WithOnDeny(func(ui ratelimit.UserInfo) {
			log.Printf("cart add denied for session %q", ui.SessionID)
		}),
	)(addToCart))

	catalog := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("catalog\n"))
	})
	mux.Handle("/products", limiter.Require(domain.CategoryAPI, domain.ActionPublicRead)(catalog))

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("example server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
