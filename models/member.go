package models

// MemberRegistration is the public join-the-community form payload. Fields
// are stored as-is in the members collection; only presence is validated.
type MemberRegistration struct {
	Title          string `json:"title"`
	Firstname      string `json:"firstname" binding:"required"`
	Surname        string `json:"surname" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone_Personal string `json:"phone_personal" binding:"required"`
	Address        string `json:"address" binding:"required"`
	SpiritualGifts string `json:"spiritual_gifts"`
}

func (m MemberRegistration) Document() map[string]interface{} {
	return map[string]interface{}{
		"title":           m.Title,
		"firstname":       m.Firstname,
		"surname":         m.Surname,
		"email":           m.Email,
		"phone_personal":  m.Phone_Personal,
		"address":         m.Address,
		"spiritual_gifts": m.SpiritualGifts,
	}
}

// StatusChange is the admin request body for a member status transition.
type StatusChange struct {
	Status string `json:"status" binding:"required"`
}

// DeleteConfirmation carries the token issued by the delete-request step back
// to the destructive call.
type DeleteConfirmation struct {
	ConfirmToken string `json:"confirmToken" binding:"required"`
}
