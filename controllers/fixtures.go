package controllers

import (
	"github.com/ChurchPortal/models"
)

// Test fixture data for use in tests

// MockAdminSession creates an authenticated admin session for testing
func MockAdminSession() models.Session {
	return models.Session{
		UID:   "admin-1",
		Email: "admin@ecwamai-gero.org",
		Phase: models.SessionAuthenticated,
	}
}

// MockMemberRecord creates a sample member registration record for testing
func MockMemberRecord(id, status, firstname, surname string) models.Record {
	return models.Record{
		ID:     id,
		Status: status,
		Fields: map[string]string{
			"title":          "Mr",
			"firstname":      firstname,
			"surname":        surname,
			"email":          firstname + "@example.com",
			"phone_personal": "08030000000",
		},
	}
}

// MockPrayerRecord creates a sample prayer request record for testing
func MockPrayerRecord(id, status, fullName, subject string) models.Record {
	return models.Record{
		ID:     id,
		Status: status,
		Fields: map[string]string{
			"fullName": fullName,
			"subject":  subject,
			"message":  "Please pray with me.",
		},
	}
}
