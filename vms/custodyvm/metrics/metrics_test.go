// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/metric"

	"github.com/luxfi/custodyvm/vms/custodyvm/events"
)

func TestNew(t *testing.T) {
	require := require.New(t)

	m, err := New(metric.NewRegistry())
	require.NoError(err)

	m.MarkEvents([]events.Event{
		{Type: events.Minted},
		{Type: events.ProposalCreated},
		{Type: events.ConsensusForced},
		{Type: events.WatchdogRegistered},
	})
	m.MarkFailure()
	m.SetTotalMinted(1_000)
	m.SetReserves(2)
	m.SetWatchdogs(5)
	m.SetLiveProposals(0)
}
