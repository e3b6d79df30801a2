package models

// PrayerSubmission is the public prayer-request form payload.
type PrayerSubmission struct {
	FullName string `json:"fullName" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

func (p PrayerSubmission) Document() map[string]interface{} {
	return map[string]interface{}{
		"fullName": p.FullName,
		"subject":  p.Subject,
		"message":  p.Message,
	}
}
