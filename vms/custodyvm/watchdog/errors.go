// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package watchdog

import "errors"

var (
	ErrZeroAddress       = errors.New("zero address")
	ErrEmptyPayload      = errors.New("empty proposal payload")
	ErrUnknownProposal   = errors.New("unknown proposal type")
	ErrInvalidParameters = errors.New("invalid consensus parameters")

	ErrNotActiveWatchdog         = errors.New("caller is not an active watchdog")
	ErrWatchdogAlreadyActive     = errors.New("watchdog already active")
	ErrBelowMinimumWatchdogCount = errors.New("below minimum watchdog count")
	ErrTargetNotApproved         = errors.New("intervention target not approved")
	ErrNoRedemptionHandler       = errors.New("no redemption handler configured")
	ErrNoInterventionTarget      = errors.New("no intervention target configured")

	ErrProposalNotFound    = errors.New("proposal not found")
	ErrDuplicateProposal   = errors.New("duplicate proposal")
	ErrProposalIDMismatch  = errors.New("proposal ID does not match its contents")
	ErrAlreadyVoted        = errors.New("already voted")
	ErrVotingEnded         = errors.New("voting ended")
	ErrAlreadyExecuted     = errors.New("proposal already executed")
	ErrProposalNotApproved = errors.New("proposal not approved")
)
