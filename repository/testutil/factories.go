package testutil

import (
	"pitboss/models"
)

// CreateTestLedgerEntry creates a ledger entry with default values
func CreateTestLedgerEntry(playerID string, points int64, transactionType models.TransactionType) *models.LedgerEntry {
	return &models.LedgerEntry{
		PlayerID:        playerID,
		PointsChange:    points,
		TransactionType: transactionType,
		Reason:          "test accrual",
	}
}

// CreateTestLedgerEntryForSession creates a session-bound ledger entry
func CreateTestLedgerEntryForSession(playerID, sessionID string, points int64, transactionType models.TransactionType) *models.LedgerEntry {
	entry := CreateTestLedgerEntry(playerID, points, transactionType)
	entry.SessionID = &sessionID
	return entry
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// TierPtr returns a pointer to t
func TierPtr(t models.Tier) *models.Tier {
	return &t
}
