package models

import "time"

// AllSubDistricts is the sub-district sentinel for admins and
// announcements addressed to every sub-district.
const AllSubDistricts = "Semua"

// NIKLength is the fixed length of a national ID number
const NIKLength = 16

// MinPasswordLength applies at registration
const MinPasswordLength = 6

// Request types

type LoginRequest struct {
	NIK          string `json:"nik"`
	Password     string `json:"password"`
	IsAdminLogin bool   `json:"is_admin_login"`
}

type RegisterRequest struct {
	Name        string `json:"name"`
	NIK         string `json:"nik"`
	Password    string `json:"password"`
	SubDistrict string `json:"sub_district"`
}

// VoterID is optional; when present it must match the session subject
type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
	VoterID     string `json:"voter_id,omitempty"`
}

type CandidateRequest struct {
	Name        string   `json:"name"`
	PhotoURL    string   `json:"photo_url"`
	SubDistrict string   `json:"sub_district"`
	Vision      string   `json:"vision"`
	Mission     []string `json:"mission"`
	Background  string   `json:"background"`
	Experience  string   `json:"experience"`
}

type AnnouncementRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	SubDistrict string `json:"sub_district"`
	IsImportant bool   `json:"is_important"`
}

type ScheduleRequest struct {
	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`
}

// Response types

type LoginResponse struct {
	User      Profile   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterResponse struct {
	User Profile `json:"user"`
}

type AdminSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AdminsResponse struct {
	Admins []AdminSummary `json:"admins"`
}

type CastVoteResponse struct {
	Message string    `json:"message"`
	CastAt  time.Time `json:"cast_at"`
}

type ResidentsResponse struct {
	Residents []Profile `json:"residents"`
	Total     int       `json:"total"`
}

type ResetResponse struct {
	Message       string `json:"message"`
	VotersReset   int64  `json:"voters_reset"`
	RecordsPurged int64  `json:"records_purged"`
}

// Domain types

// Voter is the stored credential record. PasswordHash never leaves the server.
type Voter struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	NIK          string    `json:"nik"`
	PasswordHash string    `json:"-"`
	SubDistrict  string    `json:"sub_district"`
	IsAdmin      bool      `json:"is_admin"`
	HasVoted     bool      `json:"has_voted"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the client-visible subset of a Voter
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NIK         string `json:"nik"`
	SubDistrict string `json:"sub_district"`
	IsAdmin     bool   `json:"is_admin"`
	HasVoted    bool   `json:"has_voted"`
}

func (v Voter) Profile() Profile {
	return Profile{
		ID:          v.ID,
		Name:        v.Name,
		NIK:         v.NIK,
		SubDistrict: v.SubDistrict,
		IsAdmin:     v.IsAdmin,
		HasVoted:    v.HasVoted,
	}
}

type Candidate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PhotoURL    string    `json:"photo_url"`
	SubDistrict string    `json:"sub_district"`
	Vision      string    `json:"vision"`
	Mission     []string  `json:"mission"`
	Background  string    `json:"background"`
	Experience  string    `json:"experience"`
	Votes       int       `json:"votes"`
	CreatedAt   time.Time `json:"created_at"`
}

type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	SubDistrict string    `json:"sub_district"`
	IsImportant bool      `json:"is_important"`
	CreatedAt   time.Time `json:"created_at"`
}

// ElectionSettings is the single stored election clock row
type ElectionSettings struct {
	IsActive  bool       `json:"is_active"`
	StartAt   *time.Time `json:"start_at,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ElectionStatus is ElectionSettings plus values derived from the current time
type ElectionStatus struct {
	IsActive bool       `json:"is_active"`
	IsOpen   bool       `json:"is_open"`
	Ended    bool       `json:"ended"`
	StartAt  *time.Time `json:"start_at,omitempty"`
	EndAt    *time.Time `json:"end_at,omitempty"`
	EndsIn   string     `json:"ends_in,omitempty"`
}

type VoteRecord struct {
	ID          string    `json:"id"`
	VoterID     string    `json:"voter_id"`
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

// Results types

type CandidateTally struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	PhotoURL    string  `json:"photo_url"`
	Votes       int     `json:"votes"`
	Percentage  float64 `json:"percentage"`
	Rank        int     `json:"rank"` // 1-indexed ranking
}

type ResultsResponse struct {
	Visible     bool             `json:"visible"`
	Ended       bool             `json:"ended"`
	SubDistrict string           `json:"sub_district"`
	TotalVotes  int              `json:"total_votes"`
	Candidates  []CandidateTally `json:"candidates,omitempty"`
	Winner      *CandidateTally  `json:"winner,omitempty"`
	Message     string           `json:"message,omitempty"`

	// Set instead of Candidates when the scope is AllSubDistricts.
	// Each sub-district is ranked on its own and has its own winner.
	SubDistricts []ResultsResponse `json:"sub_districts,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
