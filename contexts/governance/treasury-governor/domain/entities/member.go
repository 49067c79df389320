package entities

// Member is the read model of one account's staking and delegation state.
type Member struct {
	Account             string
	Stake               uint64
	VotingPower         uint64
	Delegate            string
	ReceivedDelegations uint64
	CanPropose          bool
}
