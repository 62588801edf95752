package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName        string `json:"app_name"`
	ListenIP       string `json:"listen_ip"`
	ListenPort     int    `json:"listen_port"`
	SessionKey     string `json:"session_key"`
	UsersFile      string `json:"users_file"`
	BreweryAPIBase string `json:"brewery_api_base"`
}

var AppConfig Config

func LoadConfig(path string) error {
	// A .env file is optional; environment wins over the JSON file either way.
	godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	AppConfig = Config{}
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		return err
	}

	// Override with environment variables if present
	if envKey := os.Getenv("BREWFINDER_SESSION_KEY"); envKey != "" {
		AppConfig.SessionKey = envKey
	}
	if envFile := os.Getenv("BREWFINDER_USERS_FILE"); envFile != "" {
		AppConfig.UsersFile = envFile
	}
	if envPort := os.Getenv("BREWFINDER_LISTEN_PORT"); envPort != "" {
		if port, err := strconv.Atoi(envPort); err == nil {
			AppConfig.ListenPort = port
		}
	}

	if AppConfig.AppName == "" {
		AppConfig.AppName = "BrewFinder"
	}
	if AppConfig.UsersFile == "" {
		AppConfig.UsersFile = "data/users.json"
	}
	if AppConfig.BreweryAPIBase == "" {
		AppConfig.BreweryAPIBase = "https://api.openbrewerydb.org/v1/breweries"
	}

	// If no key is provided or it's the placeholder, generate a secure random one
	if AppConfig.SessionKey == "" || AppConfig.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		log.Println("WARNING: No session key configured. Generating a random key. Sessions will be invalidated on restart.")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return err
		}
		AppConfig.SessionKey = hex.EncodeToString(randomKey)
	}

	return nil
}
