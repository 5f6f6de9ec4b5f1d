package models

import "time"

// Campaign is a time-boxed collection of challenges users can join.
type Campaign struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Type        string    `gorm:"size:16;not null" json:"type"` // daily, weekly, monthly, event
	Duration    int       `gorm:"not null" json:"duration"`     // days
	StartDate   time.Time `gorm:"not null;index" json:"start_date"`
	EndDate     time.Time `gorm:"not null;index" json:"end_date"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	Banner      string    `gorm:"size:512" json:"banner"`
	Category    string    `gorm:"size:64;default:'custom'" json:"category"`
	CreatedAt   time.Time `json:"created_at"`

	Challenges   []Challenge           `gorm:"many2many:campaign_challenges" json:"challenges"`
	Participants []CampaignParticipant `gorm:"constraint:OnDelete:CASCADE" json:"participants,omitempty"`
}

// CampaignParticipant tracks one user's membership and score in a campaign.
type CampaignParticipant struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	CampaignID  uint      `gorm:"index:idx_campaign_user,unique;not null" json:"-"`
	UserID      uint      `gorm:"index:idx_campaign_user,unique;not null" json:"user_id"`
	JoinedAt    time.Time `json:"joined_at"`
	TotalPoints int       `gorm:"default:0" json:"total_points"`

	Completions []CampaignCompletion `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE" json:"completions"`
}

// CampaignCompletion records that a participant finished one campaign challenge.
// A (participant, challenge) pair is completed at most once.
type CampaignCompletion struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	ParticipantID uint      `gorm:"index:idx_participant_challenge,unique;not null" json:"-"`
	ChallengeID   uint      `gorm:"index:idx_participant_challenge,unique;not null" json:"challenge_id"`
	CompletedAt   time.Time `json:"completed_at"`
}

// HasCompleted reports whether the participant already completed the challenge.
func (p *CampaignParticipant) HasCompleted(challengeID uint) bool {
	for _, c := range p.Completions {
		if c.ChallengeID == challengeID {
			return true
		}
	}
	return false
}
