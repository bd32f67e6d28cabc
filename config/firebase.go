package config

// ServiceAccount holds essential fields from your JSON key
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// Federated provider ids accepted for account linking.
const (
	GoogleProviderID = "google.com"
)
