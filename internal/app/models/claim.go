package models

import "time"

type TimeModel struct {
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
}

// Claim is the persisted record of one submission. Result payloads live in
// ClaimResult documents keyed by claim id and result type.
type Claim struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	ClaimNumber   string     `json:"claimNumber" bson:"claimNumber"`
	SessionID     string     `json:"sessionId" bson:"sessionId"`
	Status        string     `json:"status" bson:"status"`
	AnalysisMode  string     `json:"analysisMode" bson:"analysisMode"`
	FileCount     int        `json:"fileCount" bson:"fileCount"`
	ObjectNames   []string   `json:"-" bson:"objectNames"`
	FileNames     []string   `json:"fileNames" bson:"fileNames"`
	ClaimedAmount float64    `json:"claimedAmount" bson:"claimedAmount"`
	AccuracyScore float64    `json:"accuracyScore" bson:"accuracyScore"`
	Passed        bool       `json:"passed" bson:"passed"`
	ErrorMessage  string     `json:"errorMessage,omitempty" bson:"errorMessage,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	TimeModel     `bson:",inline"`
}

// ClaimResult stores one named result payload produced during processing,
// e.g. the final report or a per-stage extraction snapshot.
type ClaimResult struct {
	ID         string      `json:"id" bson:"_id,omitempty"`
	ClaimID    string      `json:"claimId" bson:"claimId"`
	ResultType string      `json:"resultType" bson:"resultType"`
	Payload    interface{} `json:"payload" bson:"payload"`
	CreatedAt  time.Time   `json:"createdAt" bson:"createdAt"`
}

// Tariff is a reference price entry used by the optional tariff check.
type Tariff struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ItemCode  string    `json:"item_code" bson:"itemCode"`
	ItemName  string    `json:"item_name" bson:"itemName"`
	Price     float64   `json:"price" bson:"price"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
