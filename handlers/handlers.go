package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"brewfinder/auth"
	"brewfinder/brewery"
	"brewfinder/config"
	"brewfinder/models"

	"github.com/gorilla/csrf"
)

const homeSampleCount = 8

// App holds the collaborators the HTTP surface dispatches into. Handlers
// carry no per-request state of their own.
type App struct {
	Auth      *auth.Service
	Breweries *brewery.Client
}

func NewApp(authService *auth.Service, client *brewery.Client) *App {
	return &App{Auth: authService, Breweries: client}
}

func (app *App) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", app.IndexHandler)

	// JSON endpoints for script-driven clients
	mux.HandleFunc("/api/v1/breweries", app.APIBreweriesHandler)
	mux.HandleFunc("/api/v1/brewery-types", app.APIBreweryTypesHandler)
}

// pageData is everything the templates can see for one request.
type pageData struct {
	AppName     string
	Page        string
	LoggedIn    bool
	User        models.SessionUser
	AuthMessage string
	AuthSuccess bool

	Breweries    []models.Brewery
	ResultsCount int
	SearchError  string
	SearchName   string
	SearchCity   string
	SearchState  string
	SearchType   string

	SampleBreweries []models.Brewery
	TypeKeys        []string
	TypeLabels      map[string]string

	CSRFField template.HTML
}

// IndexHandler is the single entry point. Pages are selected with ?page=
// (home, breweries, types, about); POSTs carry either an auth action
// (login, register, logout) or a search flag with the filter fields.
func (app *App) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := pageData{
		AppName:    config.AppConfig.AppName,
		TypeKeys:   brewery.TypeKeys(),
		TypeLabels: brewery.TypeLabels(),
	}

	if r.Method == http.MethodPost && r.FormValue("action") != "" {
		app.handleAuthAction(w, r, &data)
	}

	page := r.URL.Query().Get("page")
	switch page {
	case "home", "breweries", "types", "about":
	default:
		page = "home"
	}

	user, loggedIn := app.Auth.CurrentUser(r)
	data.User = user
	data.LoggedIn = loggedIn

	// Everything behind the entry point requires a login.
	if !loggedIn {
		page = "login"
	}

	if page == "breweries" && r.Method == http.MethodPost && r.FormValue("search") != "" {
		app.handleSearch(r, &data)
	}

	if page == "home" {
		data.SampleBreweries = app.Breweries.RandomSample(r.Context(), homeSampleCount)
	}

	data.Page = page
	app.renderTemplate(w, r, page, data)
}

func (app *App) handleAuthAction(w http.ResponseWriter, r *http.Request, data *pageData) {
	switch r.FormValue("action") {
	case "register":
		app.handleRegister(w, r, data)
	case "login":
		app.handleLogin(w, r, data)
	case "logout":
		result := app.Auth.Logout(w, r)
		data.AuthMessage = result.Message
		data.AuthSuccess = result.Success
	}
}

func (app *App) handleRegister(w http.ResponseWriter, r *http.Request, data *pageData) {
	ip := getClientIP(r)
	if !registerLimiter.Allow(ip) {
		data.AuthMessage = "Too many attempts. Please try again later."
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	switch {
	case username == "" || email == "" || password == "":
		data.AuthMessage = "All fields are required"
	case !auth.IsValidEmail(email):
		data.AuthMessage = "Invalid email address"
	case password != confirm:
		data.AuthMessage = "Passwords do not match"
	default:
		result := app.Auth.Register(username, email, password)
		data.AuthMessage = result.Message
		data.AuthSuccess = result.Success
		registerLimiter.Record(ip)

		if result.Success {
			// Auto-login is a convenience, not part of registration:
			// the account exists even if this step fails.
			login := app.Auth.Login(w, r, username, password)
			if !login.Success {
				data.AuthMessage = auth.MsgAutoLoginFailed
			}
		}
	}
}

func (app *App) handleLogin(w http.ResponseWriter, r *http.Request, data *pageData) {
	ip := getClientIP(r)
	if !loginLimiter.Allow(ip) {
		data.AuthMessage = "Too many attempts. Please try again later."
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		data.AuthMessage = "Username and password are required"
		return
	}

	result := app.Auth.Login(w, r, username, password)
	data.AuthMessage = result.Message
	data.AuthSuccess = result.Success
	if result.Success {
		loginLimiter.Reset(ip)
	} else {
		loginLimiter.Record(ip)
	}
}

func (app *App) handleSearch(r *http.Request, data *pageData) {
	data.SearchName = strings.TrimSpace(r.FormValue("name"))
	data.SearchCity = strings.TrimSpace(r.FormValue("city"))
	data.SearchState = strings.TrimSpace(r.FormValue("state"))
	data.SearchType = strings.TrimSpace(r.FormValue("type"))

	if msg := validateSearch(data.SearchName, data.SearchCity, data.SearchState, data.SearchType); msg != "" {
		data.SearchError = msg
		return
	}

	data.Breweries = app.Breweries.Search(r.Context(), data.SearchName, data.SearchCity, data.SearchState, data.SearchType)
	data.ResultsCount = len(data.Breweries)
	if len(data.Breweries) == 0 {
		data.SearchError = "No breweries found matching your search criteria. Try different search terms."
	}
}

// validateSearch rejects a query before any external call is made. An empty
// string means the query is acceptable.
func validateSearch(name, city, state, breweryType string) string {
	if len(name) > brewery.MaxSearchLength ||
		len(city) > brewery.MaxSearchLength ||
		len(state) > brewery.MaxSearchLength {
		return fmt.Sprintf("Input too long. Maximum %d characters allowed.", brewery.MaxSearchLength)
	}
	if breweryType != "" && !brewery.IsKnownType(breweryType) {
		return "Invalid brewery type selected."
	}
	if name == "" && city == "" && state == "" && breweryType == "" {
		return "Please enter at least one search criteria."
	}
	return ""
}

func (app *App) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	tmpl, err := template.ParseFiles("templates/layout.html", "templates/"+name+".html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data.CSRFField = csrf.TemplateField(r)

	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
