package models

// Credentials holds the username/password login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Tenant   string `json:"tenant"`
}

// IsValid returns true if username and password are non-empty.
func (c Credentials) IsValid() bool {
	return c.Username != "" && c.Password != ""
}

// Environment represents the API environment.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
)

// BaseURL returns the API base URL for the environment.
func (e Environment) BaseURL() string {
	switch e {
	case EnvStaging:
		return "https://api.staging.checkpointhr.io/api"
	case EnvDevelopment:
		return "http://localhost:8080/api"
	default:
		return "https://api.checkpointhr.io/api"
	}
}
