// utils/firebase.go
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"authlink/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

var (
	// FirebaseAuth is the Admin SDK auth client.
	FirebaseAuth *auth.Client
	// IdentityToolkit is the REST client used for end-user credential operations.
	IdentityToolkit *identitytoolkit.Service
)

// LoadServiceAccount reads the fields we need from a service account JSON key.
func LoadServiceAccount(path string) (*config.ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account: %w", err)
	}
	var sa config.ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("failed to parse service account: %w", err)
	}
	return &sa, nil
}

// FirebaseInit initializes the Firebase Admin auth client and the Identity Toolkit client.
func FirebaseInit() {
	ctx := context.Background()
	cfg := config.AppConfig

	var adminOpts []option.ClientOption
	projectID := cfg.FirebaseProjectID
	if cfg.FirebaseCredentialsFile != "" {
		adminOpts = append(adminOpts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
		if projectID == "" {
			sa, err := LoadServiceAccount(cfg.FirebaseCredentialsFile)
			if err != nil {
				log.Fatalf("firebase: %v", err)
			}
			projectID = sa.ProjectID
		}
	}

	var fbConfig *firebase.Config
	if projectID != "" {
		fbConfig = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, adminOpts...)
	if err != nil {
		log.Fatalf("firebase: error initializing app: %v", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("firebase: error getting Auth client: %v", err)
	}
	FirebaseAuth = client

	if cfg.FirebaseAPIKey == "" {
		log.Fatalf("firebase: FIREBASE_API_KEY is required")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.FirebaseAPIKey))
	if err != nil {
		log.Fatalf("firebase: error creating identity toolkit client: %v", err)
	}
	IdentityToolkit = svc

	GetLogger().Sugar().Infof("firebase: initialized for project %q", projectID)
}
