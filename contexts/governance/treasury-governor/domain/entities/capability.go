package entities

type Capability string

const (
	CapabilityPropose  Capability = "governance.propose"
	CapabilityVote     Capability = "governance.vote"
	CapabilityExecute  Capability = "governance.execute"
	CapabilityGuardian Capability = "governance.guardian"
	CapabilityAdmin    Capability = "governance.admin"
)
