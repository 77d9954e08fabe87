package credits

import "time"

const (
	// DefaultBalance is granted to a user the first time their balance is read.
	DefaultBalance = 10
	// DefaultPlan names the plan new users start on.
	DefaultPlan = "free"
	// LowBalanceThreshold triggers a notification when a consume crosses it.
	LowBalanceThreshold = 2
)

// Balance is a user's current credit snapshot.
type Balance struct {
	UserID    string    `json:"-"`
	Balance   int       `json:"balance"`
	Plan      string    `json:"plan"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transaction is one ledger entry. Consumes are negative, grants positive.
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

func defaultBalance(userID string, now time.Time) Balance {
	return Balance{UserID: userID, Balance: DefaultBalance, Plan: DefaultPlan, UpdatedAt: now}
}
