package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
)

var ErrInvalidCredential = errors.New("invalid email or password")

// AuthProvider is the external authentication collaborator: sign in, sign
// out, verify a presented token. Credential storage and refresh stay on the
// provider's side.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (models.Credential, error)
	SignOut(ctx context.Context, uid string) error
	Verify(ctx context.Context, token string) (models.Session, error)
}

var authProvider AuthProvider

// InitAuthProvider picks Firebase when it is configured, otherwise the local
// bootstrap admin (ADMIN_EMAIL + bcrypt ADMIN_PASSWORD_HASH) so development
// environments work without a Firebase project.
func InitAuthProvider() {
	if initializers.FirebaseAuth != nil && os.Getenv("FIREBASE_WEB_API_KEY") != "" {
		authProvider = &firebaseAuthProvider{
			apiKey:     os.Getenv("FIREBASE_WEB_API_KEY"),
			httpClient: &http.Client{Timeout: 15 * time.Second},
		}
		log.Println("Auth provider initialized with Firebase")
		return
	}
	authProvider = &localAuthProvider{}
	log.Println("WARNING: Firebase auth not configured. Using local bootstrap admin.")
}

func GetAuthProvider() AuthProvider {
	return authProvider
}

// SetAuthProvider swaps the provider; tests install fakes here.
func SetAuthProvider(p AuthProvider) {
	authProvider = p
}

// firebaseAuthProvider signs in through the identitytoolkit REST endpoint
// (the backend analogue of signInWithEmailAndPassword) and verifies ID tokens
// with the Admin SDK.
type firebaseAuthProvider struct {
	apiKey     string
	httpClient *http.Client
}

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

func (p *firebaseAuthProvider) SignIn(ctx context.Context, email, password string) (models.Credential, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return models.Credential{}, fmt.Errorf("failed to build sign-in request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInEndpoint+"?key="+p.apiKey, bytes.NewBuffer(body))
	if err != nil {
		return models.Credential{}, fmt.Errorf("failed to build sign-in request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.Credential{}, fmt.Errorf("authentication service unreachable: %v", err)
	}
	defer resp.Body.Close()

	responseBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		// Firebase reports bad email and bad password under the same family
		// of codes; pass its message through without reinterpreting it.
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(responseBody, &errResp)
		log.Printf("Firebase sign-in rejected for %s: %s", email, errResp.Error.Message)
		return models.Credential{}, ErrInvalidCredential
	}

	var signIn struct {
		IDToken string `json:"idToken"`
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	}
	if err := json.Unmarshal(responseBody, &signIn); err != nil {
		return models.Credential{}, fmt.Errorf("unexpected sign-in response: %v", err)
	}

	return models.Credential{
		UID:   signIn.LocalID,
		Email: signIn.Email,
		Token: signIn.IDToken,
	}, nil
}

func (p *firebaseAuthProvider) SignOut(ctx context.Context, uid string) error {
	if err := initializers.FirebaseAuth.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for %s: %v", uid, err)
	}
	return nil
}

func (p *firebaseAuthProvider) Verify(ctx context.Context, token string) (models.Session, error) {
	decoded, err := initializers.FirebaseAuth.VerifyIDToken(ctx, token)
	if err != nil {
		return models.Session{Phase: models.SessionUnauthenticated}, err
	}

	email := ""
	if e, ok := decoded.Claims["email"].(string); ok {
		email = e
	}

	return models.Session{
		UID:   decoded.UID,
		Email: email,
		Phase: models.SessionAuthenticated,
	}, nil
}

// localAuthProvider is the bootstrap path: a single admin credential from the
// environment, bcrypt-checked, with an HS256 session token.
type localAuthProvider struct{}

const localAdminUID = "local-admin"

func (p *localAuthProvider) SignIn(ctx context.Context, email, password string) (models.Credential, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	passwordHash := os.Getenv("ADMIN_PASSWORD_HASH")

	if adminEmail == "" || passwordHash == "" || email != adminEmail {
		return models.Credential{}, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return models.Credential{}, ErrInvalidCredential
	}

	generateToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   localAdminUID,
		"email": adminEmail,
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	})

	token, err := generateToken.SignedString([]byte(os.Getenv("SECRET")))
	if err != nil {
		return models.Credential{}, fmt.Errorf("failed to generate token: %v", err)
	}

	return models.Credential{
		UID:   localAdminUID,
		Email: adminEmail,
		Token: token,
	}, nil
}

func (p *localAuthProvider) SignOut(ctx context.Context, uid string) error {
	// Nothing to revoke; local tokens simply expire.
	return nil
}

func (p *localAuthProvider) Verify(ctx context.Context, tokenString string) (models.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("SECRET")), nil
	})
	if err != nil || !token.Valid {
		return models.Session{Phase: models.SessionUnauthenticated}, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Session{Phase: models.SessionUnauthenticated}, errors.New("invalid token claims")
	}

	uid, _ := claims["uid"].(string)
	email, _ := claims["email"].(string)
	if uid == "" {
		return models.Session{Phase: models.SessionUnauthenticated}, errors.New("invalid token claims")
	}

	return models.Session{
		UID:   uid,
		Email: email,
		Phase: models.SessionAuthenticated,
	}, nil
}
