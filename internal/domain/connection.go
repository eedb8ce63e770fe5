package domain

import "time"

// allowedTransitions enumerates the connection status machine.
var allowedTransitions = map[ConnectionStatus][]ConnectionStatus{
	ConnectionPending:  {ConnectionApproved, ConnectionRejected},
	ConnectionApproved: {ConnectionActive, ConnectionRejected},
	ConnectionActive:   {ConnectionDisconnected},
}

// Transition applies a status change and its derived-date side effects
// (approval date, connection date, first next-bill date). All derived
// fields are set here, explicitly, before persistence; nothing recomputes
// them on unrelated writes.
func (c *Connection) Transition(to ConnectionStatus, now time.Time) error {
	ok := false
	for _, t := range allowedTransitions[c.Status] {
		if t == to {
			ok = true
			break
		}
	}
	if !ok {
		return ErrInvalidStatusChange
	}

	switch to {
	case ConnectionApproved:
		at := now
		c.ApprovedAt = &at
	case ConnectionActive:
		at := now
		c.ConnectedAt = &at
		next := now.AddDate(0, 0, c.BillingCycleDays)
		c.NextBillDate = &next
	}

	c.Status = to
	c.UpdatedAt = now
	return nil
}

// AdvanceBillingDates rolls the billing window forward after a bill has
// been generated for this connection.
func (c *Connection) AdvanceBillingDates(billedAt time.Time) {
	at := billedAt
	c.LastBillDate = &at
	next := billedAt.AddDate(0, 0, c.BillingCycleDays)
	c.NextBillDate = &next
	c.UpdatedAt = billedAt
}
