// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and request limits. AppConfig is where
// everything specific to GroomHub lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // How long a signed-in session stays valid

	// File storage for pet photo uploads (local backend)
	StorageLocalPath string // Filesystem path for uploaded files
	StorageLocalURL  string // URL prefix for serving local files

	// Base URL for OAuth callbacks
	BaseURL string // e.g., "https://groomhub.example.com" or "http://localhost:3000"

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// SuperAdmin bootstrap
	SuperAdminEmail string // Promotes/creates this account as superadmin on startup
}
