package passgage

import "time"

// User is the authenticated user's profile as the server reports it.
type User struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Company  Company `json:"company"`
	JobTitle string  `json:"job_title,omitempty"`
	GSM      string  `json:"gsm,omitempty"`
}

// Company identifies the organization a user belongs to.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Branch is a company location. DistanceM is only set on proximity search
// results.
type Branch struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Address   string   `json:"address,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	DistanceM *float64 `json:"distance_m,omitempty"`
}

// Entrance is an access event the server recorded for the user.
type Entrance struct {
	ID        string    `json:"id"`
	BranchID  string    `json:"branch_id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkLogRecord is a remote-work entry or exit event.
type WorkLogRecord struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

// LoginData is the payload of a successful login.
type LoginData struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Scan is the payload of a successful QR or NFC validation.
type Scan struct {
	Entrance Entrance `json:"entrance"`
	Branch   Branch   `json:"branch"`
}
