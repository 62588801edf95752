package main

import (
	"fmt"
	"log"
	"net/http"

	"brewfinder/auth"
	"brewfinder/brewery"
	"brewfinder/config"
	"brewfinder/handlers"
	"brewfinder/store"

	"github.com/gorilla/csrf"
)

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	users := store.New(config.AppConfig.UsersFile)
	authService := auth.NewService(users, config.AppConfig.SessionKey)
	client := brewery.NewClient(config.AppConfig.BreweryAPIBase)

	app := handlers.NewApp(authService, client)

	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	app.RegisterHandlers(mux)

	addr := fmt.Sprintf("%s:%d", config.AppConfig.ListenIP, config.AppConfig.ListenPort)
	log.Printf("Server starting on %s (%s)", addr, config.AppConfig.AppName)

	// CSRF protection for the form surface.
	// We need a 32-byte key; the session key serves here. In production this
	// should be a separate key.
	csrfMiddleware := csrf.Protect(
		[]byte(config.AppConfig.SessionKey),
		csrf.Secure(false), // Set to true in production with HTTPS
		csrf.Path("/"),
	)

	handler := handlers.SecurityHeadersMiddleware(csrfMiddleware(mux))
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
