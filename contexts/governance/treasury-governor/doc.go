// Package treasurygovernor implements the collective decision and fund
// release engine of the governance context.
//
// Members stake value for square-root dampened voting power and may delegate
// it away. Proposals to pay out of a categorized treasury move through a
// block-height voting window, quorum and approval checks, a wall-clock
// timelock and finally execution. All three engines mutate under one writer
// lock supplied by the LedgerStore port; value leaves the system only through
// the ValueTransfer port and committed changes are announced through the
// EventSink outbox.
package treasurygovernor
