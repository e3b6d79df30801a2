package initializers

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var (
	FirebaseAuth *auth.Client
	Firestore    *firestore.Client
)

// InitFirebase sets up the Firebase Admin SDK and the two clients this
// service lives on: Auth for admin session verification and Firestore for the
// members and prayers collections. Failures are logged, not fatal, so the
// local bootstrap admin path keeps working in development.
func InitFirebase() {
	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")

	var app *firebase.App
	var err error

	if serviceAccountPath != "" {
		opt := option.WithCredentialsFile(serviceAccountPath)
		app, err = firebase.NewApp(context.Background(), nil, opt)
		if err != nil {
			log.Printf("Failed to initialize Firebase app with service account: %v", err)
			return
		}
		log.Println("Firebase initialized with service account file")
	} else {
		// Application Default Credentials
		app, err = firebase.NewApp(context.Background(), nil)
		if err != nil {
			log.Printf("Failed to initialize Firebase app with ADC: %v", err)
			return
		}
		log.Println("Firebase initialized with Application Default Credentials")
	}

	FirebaseAuth, err = app.Auth(context.Background())
	if err != nil {
		log.Printf("Failed to get Firebase auth client: %v", err)
		return
	}

	Firestore, err = app.Firestore(context.Background())
	if err != nil {
		log.Printf("Failed to get Firestore client: %v", err)
		return
	}

	log.Println("Firebase auth and Firestore clients initialized successfully")
}
