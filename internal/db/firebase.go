package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/example/expense-tracker/internal/config"
)

// Admin bundles the Firebase Admin SDK clients the service uses. Fields are
// nil when the corresponding feature is disabled.
type Admin struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
	Photos    PhotoStorage
}

// Close releases the clients that hold connections.
func (a *Admin) Close() error {
	if a == nil || a.Firestore == nil {
		return nil
	}
	return a.Firestore.Close()
}

// InitAdmin initializes the Firebase Admin SDK from appConfig. It returns
// (nil, nil) when no service account credentials are configured; the service
// then runs with the REST clients only.
func InitAdmin(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*Admin, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("InitAdmin: appConfig cannot be nil")
	}
	if !appConfig.HasAdminCredentials() {
		logger.Warn("Firebase Admin SDK disabled: no service account credentials configured. Photo upload and audit logging are unavailable.")
		return nil, nil
	}

	var credsOption option.ClientOption
	if appConfig.GoogleApplicationCredentials != "" {
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file specified in GOOGLE_APPLICATION_CREDENTIALS does not exist", zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		credsOption = option.WithCredentialsFile(appConfig.GoogleApplicationCredentials)
	} else {
		logger.Info("Initializing Firebase with Base64 encoded service account JSON.")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FirebaseServiceAccountJSONBase64: %w", err)
		}
		credsOption = option.WithCredentialsJSON(decodedJSON)
	}

	firebaseAppConfig := &firebase.Config{
		ProjectID:     appConfig.FirebaseProjectID,
		StorageBucket: appConfig.FirebaseStorageBucket,
		DatabaseURL:   appConfig.FirebaseDatabaseURL,
	}

	app, err := firebase.NewApp(ctx, firebaseAppConfig, credsOption)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	admin := &Admin{App: app}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Auth: %w", err)
	}
	admin.Auth = authClient
	logger.Info("Firebase Auth client initialized successfully.")

	if appConfig.FirebaseStorageBucket != "" {
		storageClient, err := app.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("app.Storage: %w", err)
		}
		bucket, err := storageClient.DefaultBucket()
		if err != nil {
			return nil, fmt.Errorf("storage.DefaultBucket: %w", err)
		}
		admin.Photos = NewBucketPhotoStorage(gcsBucket{handle: bucket, name: appConfig.FirebaseStorageBucket})
		logger.Info("Firebase Storage bucket initialized successfully.", zap.String("bucket", appConfig.FirebaseStorageBucket))
	}

	if appConfig.AuditEnabled {
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("app.Firestore: %w", err)
		}
		admin.Firestore = client
		logger.Info("Firestore client initialized successfully for audit logging.")
	}

	return admin, nil
}
