package betting

const DefaultStartBalance = 100

// Account holds the token balance of a player.
// The balance is changed only by Ledger operations and never gets negative.
// Access must be serialized by the caller; the game loop is single-threaded.
type Account struct {
	balance int64
}

func NewAccount(startBalance int64) *Account {
	if startBalance < 0 {
		startBalance = 0
	}
	return &Account{balance: startBalance}
}

func (a *Account) Balance() int64 {
	return a.balance
}
