package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GitHub GitHubConfig
	Data   DataConfig
	Mining MiningConfig
}

type GitHubConfig struct {
	Token           string
	RequestsPerHour int
	PerPage         int
}

type DataConfig struct {
	// Root is the directory that holds one sub-directory of CSV tables
	// per registered repository, plus the repository registry file.
	Root string
	// ReversibleIDs switches the anonymizer into the operator-controlled
	// mode where the GitHub node id itself is stored as the anonymous id.
	ReversibleIDs bool
}

type MiningConfig struct {
	CloneBasePath string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		GitHub: GitHubConfig{
			Token:           getEnv("GITHUB_TOKEN", ""),
			RequestsPerHour: getEnvAsInt("GITHUB_REQUESTS_PER_HOUR", 5000),
			PerPage:         getEnvAsInt("GITHUB_PER_PAGE", 100),
		},
		Data: DataConfig{
			Root:          getEnv("DATA_ROOT", "./data"),
			ReversibleIDs: getEnvAsBool("REVERSIBLE_IDS", false),
		},
		Mining: MiningConfig{
			CloneBasePath: getEnv("CLONE_BASE_PATH", "./clones"),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
