package models

import "time"

// FlowState is the phone OTP state machine position.
type FlowState string

const (
	FlowIdle     FlowState = "IDLE"
	FlowCodeSent FlowState = "CODE_SENT"
	FlowVerified FlowState = "VERIFIED"
	FlowFailed   FlowState = "FAILED"
)

// FlowPurpose distinguishes phone sign-in from linking a phone to an existing identity.
type FlowPurpose string

const (
	PurposeSignIn FlowPurpose = "signin"
	PurposeLink   FlowPurpose = "link"
)

// PhoneFlow is the verification challenge state of a single OTP flow.
type PhoneFlow struct {
	ID                  string      `json:"id"`
	Purpose             FlowPurpose `json:"purpose"`
	UID                 string      `json:"uid,omitempty"`
	State               FlowState   `json:"state"`
	VerificationID      string      `json:"verificationId,omitempty"`
	PhoneNumber         string      `json:"phoneNumber"`
	ChallengeResolvedAt time.Time   `json:"challengeResolvedAt"`
	CreatedAt           time.Time   `json:"createdAt"`
	LastUpdatedAt       time.Time   `json:"lastUpdatedAt"`
}
