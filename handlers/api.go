package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"brewfinder/brewery"
)

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func sendJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// APIBreweriesHandler serves the search the pages use, as JSON. Validation
// and fallback semantics match the form surface exactly.
func (app *App) APIBreweriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendJSONResponse(w, http.StatusMethodNotAllowed, APIResponse{Status: "error", Message: "Method not allowed"})
		return
	}

	ip := getClientIP(r)
	if !apiLimiter.Allow(ip) {
		sendJSONResponse(w, http.StatusTooManyRequests, APIResponse{Status: "error", Message: "Too many requests. Please try again later."})
		return
	}
	apiLimiter.Record(ip)

	if !app.Auth.IsLoggedIn(r) {
		sendJSONResponse(w, http.StatusUnauthorized, APIResponse{Status: "error", Message: "Unauthorized"})
		return
	}

	query := r.URL.Query()
	name := strings.TrimSpace(query.Get("name"))
	city := strings.TrimSpace(query.Get("city"))
	state := strings.TrimSpace(query.Get("state"))
	breweryType := strings.TrimSpace(query.Get("type"))

	if msg := validateSearch(name, city, state, breweryType); msg != "" {
		sendJSONResponse(w, http.StatusBadRequest, APIResponse{Status: "error", Message: msg})
		return
	}

	breweries := app.Breweries.Search(r.Context(), name, city, state, breweryType)
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: breweries})
}

func (app *App) APIBreweryTypesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendJSONResponse(w, http.StatusMethodNotAllowed, APIResponse{Status: "error", Message: "Method not allowed"})
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: brewery.TypeLabels()})
}
